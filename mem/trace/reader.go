package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/mem/mem"
)

// A FormatError reports a trace line that cannot be parsed.
type FormatError struct {
	Line   int
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("trace line %d %q: %s", e.Line, e.Text, e.Reason)
}

// A Reader parses references from a trace. Each line holds the operation and
// the address in hexadecimal, octal, and decimal. Only the decimal field is
// used.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a reader that parses r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next reference. It returns io.EOF at the end of the trace
// and a *FormatError for a malformed line. Blank lines are skipped.
func (r *Reader) Next() (mem.Reference, error) {
	for r.scanner.Scan() {
		r.line++

		text := r.scanner.Text()
		fields := strings.Fields(text)

		if len(fields) == 0 {
			continue
		}

		return r.parse(text, fields)
	}

	if err := r.scanner.Err(); err != nil {
		return mem.Reference{}, err
	}

	return mem.Reference{}, io.EOF
}

func (r *Reader) parse(text string, fields []string) (mem.Reference, error) {
	if len(fields) != 4 {
		return mem.Reference{}, r.formatError(text,
			fmt.Sprintf("expected 4 fields, got %d", len(fields)))
	}

	op, err := mem.ParseOp(fields[0])
	if err != nil {
		return mem.Reference{}, r.formatError(text, err.Error())
	}

	addr, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return mem.Reference{}, r.formatError(text,
			fmt.Sprintf("invalid decimal address %q", fields[3]))
	}

	return mem.Reference{Op: op, Address: addr}, nil
}

func (r *Reader) formatError(text, reason string) *FormatError {
	return &FormatError{Line: r.line, Text: text, Reason: reason}
}

// ReadAll parses the whole trace.
func ReadAll(r io.Reader) ([]mem.Reference, error) {
	var refs []mem.Reference

	reader := NewReader(r)
	for {
		ref, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return refs, nil
		}

		if err != nil {
			return nil, err
		}

		refs = append(refs, ref)
	}
}

// LoadFile parses the trace stored in a file.
func LoadFile(path string) ([]mem.Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadAll(f)
}

// A SliceReader replays references that are already in memory.
type SliceReader struct {
	refs []mem.Reference
	next int
}

// NewSliceReader creates a reader over refs. The slice is not copied and must
// not be modified while it is read.
func NewSliceReader(refs []mem.Reference) *SliceReader {
	return &SliceReader{refs: refs}
}

// Next returns the next reference or io.EOF.
func (r *SliceReader) Next() (mem.Reference, error) {
	if r.next >= len(r.refs) {
		return mem.Reference{}, io.EOF
	}

	ref := r.refs[r.next]
	r.next++

	return ref, nil
}
