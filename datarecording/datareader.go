package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"reflect"
)

// QueryParams encapsulates all query parameters
type QueryParams struct {
	// Where holds the WHERE clause without the "WHERE" keyword
	// Example: "n_ways = ? AND trace_file = ?"
	Where string

	// Args holds the arguments for the placeholders in Where
	Args []any

	// Limit is the maximum number of records to return (pagination)
	// Set to 0 for no limit
	Limit int

	// Offset is the number of records to skip (pagination)
	Offset int

	// OrderBy specifies sorting, without the "ORDER BY" keywords
	OrderBy string
}

// DataReader can read data stored by a DataRecorder.
type DataReader interface {
	// MapTable establishes a mapping between a database table and a Go struct
	// type. This mapping is required before querying a table.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns a list of all tables that have been mapped.
	ListTables() []string

	// Query executes a query on a table and returns the results. Each result
	// has the type of the sample entry given to MapTable.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the reader
	Close() error
}

type sqliteReader struct {
	*sql.DB

	tableNames []string
	typeMap    map[string]reflect.Type
}

// NewReader creates a new DataReader
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a new DataReader with a given database
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	if _, ok := r.typeMap[tableName]; !ok {
		r.tableNames = append(r.tableNames, tableName)
	}

	r.typeMap[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	tables := make([]string, len(r.tableNames))
	copy(tables, r.tableNames)

	return tables
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	structType, ok := r.typeMap[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("no mapping found for table: %s", tableName)
	}

	query := fmt.Sprintf("SELECT * FROM %s", tableName)

	if params.Where != "" {
		query += " WHERE " + params.Where
	}

	if params.OrderBy != "" {
		query += " ORDER BY " + params.OrderBy
	}

	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", params.Limit)
		if params.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", params.Offset)
		}
	}

	totalCount, err := r.queryTotalCount(ctx, tableName, params)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx, query, params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := r.scanRowsToSlice(rows, structType)
	if err != nil {
		return nil, 0, err
	}

	return results, totalCount, nil
}

func (r *sqliteReader) queryTotalCount(
	ctx context.Context,
	tableName string,
	params QueryParams,
) (int, error) {
	var totalCount int

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName)

	if params.Where != "" {
		countQuery += " WHERE " + params.Where
	}

	err := r.DB.QueryRowContext(ctx, countQuery, params.Args...).
		Scan(&totalCount)
	if err != nil {
		return 0, err
	}

	return totalCount, nil
}

// scanRowsToSlice scans rows into new instances of structType. SQLite stores
// NaN as NULL, so NULL floats come back as NaN.
func (r *sqliteReader) scanRowsToSlice(
	rows *sql.Rows,
	structType reflect.Type,
) ([]any, error) {
	var results []any

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldMap := make(map[string]int)
	for i := 0; i < structType.NumField(); i++ {
		fieldMap[structType.Field(i).Name] = i
	}

	for rows.Next() {
		raw := make([]any, len(columns))
		scanTargets := make([]any, len(columns))

		for i := range raw {
			scanTargets[i] = &raw[i]
		}

		if err := rows.Scan(scanTargets...); err != nil {
			return nil, err
		}

		structVal := reflect.New(structType).Elem()

		for i, colName := range columns {
			fieldIdx, ok := fieldMap[colName]
			if !ok {
				continue
			}

			if err := assignColumn(structVal.Field(fieldIdx), raw[i]); err != nil {
				return nil, fmt.Errorf("column %s: %w", colName, err)
			}
		}

		results = append(results, structVal.Interface())
	}

	return results, rows.Err()
}

func assignColumn(field reflect.Value, value any) error {
	if value == nil {
		if field.Kind() == reflect.Float32 || field.Kind() == reflect.Float64 {
			field.SetFloat(math.NaN())
		}

		return nil
	}

	if b, ok := value.([]byte); ok {
		value = string(b)
	}

	v := reflect.ValueOf(value)

	switch field.Kind() {
	case reflect.Bool:
		switch x := value.(type) {
		case bool:
			field.SetBool(x)
		case int64:
			field.SetBool(x != 0)
		default:
			return fmt.Errorf("cannot assign %T to bool", value)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64:
		if !v.CanInt() {
			return fmt.Errorf("cannot assign %T to int", value)
		}

		field.SetInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		if !v.CanInt() {
			return fmt.Errorf("cannot assign %T to uint", value)
		}

		field.SetUint(uint64(v.Int()))
	case reflect.Float32, reflect.Float64:
		switch {
		case v.CanFloat():
			field.SetFloat(v.Float())
		case v.CanInt():
			field.SetFloat(float64(v.Int()))
		default:
			return fmt.Errorf("cannot assign %T to float", value)
		}
	case reflect.String:
		field.SetString(fmt.Sprint(value))
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}

	return nil
}
