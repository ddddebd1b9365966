// Package mem defines the memory references that drive a cache simulation.
package mem

import "fmt"

// Op is the kind of access a reference performs.
type Op int

// Access kinds.
const (
	Read Op = iota
	Write
)

// String returns the trace mnemonic of the operation.
func (o Op) String() string {
	switch o {
	case Read:
		return "R"
	case Write:
		return "W"
	default:
		panic(fmt.Sprintf("unknown op %d", int(o)))
	}
}

// ParseOp converts a trace mnemonic into an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "R", "r":
		return Read, nil
	case "W", "w":
		return Write, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", s)
	}
}

// A Reference is one memory access recorded in a trace.
type Reference struct {
	Op      Op
	Address uint64
}
