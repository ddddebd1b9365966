package batch

import (
	"context"
	"encoding/json"
	"io"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim"
)

// A Record is the outcome of one configuration of a sweep.
type Record struct {
	CacheSizeKB   float64      `json:"cache_size"`
	NWays         int          `json:"n_ways"`
	NSets         int          `json:"n_sets"`
	TotalMissRate sim.MissRate `json:"total_missrate"`
	WriteMissRate sim.MissRate `json:"write_missrate"`
	ReadMissRate  sim.MissRate `json:"read_missrate"`
	TraceFile     string       `json:"trace_file"`
}

// NewRecord summarizes the stats of a run.
func NewRecord(config cache.Config, stats sim.Stats, traceFile string) Record {
	return Record{
		CacheSizeKB:   float64(config.SizeInBytes()) / 1024,
		NWays:         config.Associativity,
		NSets:         config.NumSets(),
		TotalMissRate: stats.TotalMissRate(),
		WriteMissRate: stats.WriteMissRate(),
		ReadMissRate:  stats.ReadMissRate(),
		TraceFile:     traceFile,
	}
}

// WriteJSON writes the records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(records)
}

// resultEntry is the row of a record in the database
type resultEntry struct {
	SweepID        string
	CacheSizeKB    float64
	NWays          int
	NSets          int
	TotalMissRate  float64
	WriteMissRate  float64
	ReadMissRate   float64
	TraceFile      string
	Mapping        string
	WritePolicy    string
	Cycles         uint64
	DirtyEvictions uint64
}

func (e resultEntry) record() Record {
	return Record{
		CacheSizeKB:   e.CacheSizeKB,
		NWays:         e.NWays,
		NSets:         e.NSets,
		TotalMissRate: sim.MissRate(e.TotalMissRate),
		WriteMissRate: sim.MissRate(e.WriteMissRate),
		ReadMissRate:  sim.MissRate(e.ReadMissRate),
		TraceFile:     e.TraceFile,
	}
}

const resultTable = "batch_results"

// ReadRecords loads the records stored by runners in the order they were
// produced. Only the records of the given sweep are read unless sweepID is
// empty.
func ReadRecords(
	ctx context.Context,
	reader datarecording.DataReader,
	sweepID string,
) ([]Record, error) {
	reader.MapTable(resultTable, resultEntry{})

	params := datarecording.QueryParams{OrderBy: "rowid"}
	if sweepID != "" {
		params.Where = "SweepID = ?"
		params.Args = []any{sweepID}
	}

	rows, _, err := reader.Query(ctx, resultTable, params)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.(resultEntry).record())
	}

	return records, nil
}
