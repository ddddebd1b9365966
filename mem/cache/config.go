// Package cache models a single-level cache that can be replayed against a
// memory trace.
package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned when a cache cannot be built from a
// configuration.
var ErrInvalidConfiguration = errors.New("invalid cache configuration")

// Mapping determines where a memory block may be placed in the cache.
type Mapping int

// The values follow the numeric codes accepted by the command line.
const (
	DirectMapped Mapping = iota + 1
	FullyAssociative
	SetAssociative
)

func (m Mapping) String() string {
	switch m {
	case DirectMapped:
		return "direct-mapped"
	case FullyAssociative:
		return "fully-associative"
	case SetAssociative:
		return "set-associative"
	default:
		return fmt.Sprintf("Mapping(%d)", int(m))
	}
}

// ParseMapping converts a command line code into a Mapping.
func ParseMapping(code int) (Mapping, error) {
	m := Mapping(code)
	switch m {
	case DirectMapped, FullyAssociative, SetAssociative:
		return m, nil
	default:
		return 0, fmt.Errorf("unknown mapping code %d", code)
	}
}

// WritePolicyKind selects how writes reach the backing memory.
type WritePolicyKind int

// The values follow the numeric codes accepted by the command line.
const (
	WriteThrough WritePolicyKind = iota + 1
	WriteBack
)

func (k WritePolicyKind) String() string {
	switch k {
	case WriteThrough:
		return "write-through"
	case WriteBack:
		return "write-back"
	default:
		return fmt.Sprintf("WritePolicyKind(%d)", int(k))
	}
}

// ParseWritePolicy converts a command line code into a WritePolicyKind.
func ParseWritePolicy(code int) (WritePolicyKind, error) {
	k := WritePolicyKind(code)
	switch k {
	case WriteThrough, WriteBack:
		return k, nil
	default:
		return 0, fmt.Errorf("unknown write policy code %d", code)
	}
}

// Decoding selects how an address is split into tag, index, and offset.
type Decoding int

// Supported decodings.
const (
	// ModuloDecoding uses integer division and modulo, so any block size and
	// set count are allowed.
	ModuloDecoding Decoding = iota

	// BitFieldDecoding slices a fixed-width binary address. Block size and set
	// count must be powers of two.
	BitFieldDecoding
)

func (d Decoding) String() string {
	switch d {
	case ModuloDecoding:
		return "modulo"
	case BitFieldDecoding:
		return "bit-field"
	default:
		return fmt.Sprintf("Decoding(%d)", int(d))
	}
}

// Replacement selects the victim finder used within a set.
type Replacement int

// Supported replacement policies.
const (
	LRUReplacement Replacement = iota
	AccessCountReplacement
)

func (r Replacement) String() string {
	switch r {
	case LRUReplacement:
		return "recency"
	case AccessCountReplacement:
		return "access-count"
	default:
		return fmt.Sprintf("Replacement(%d)", int(r))
	}
}

// ParseReplacement converts a policy name into a Replacement.
func ParseReplacement(name string) (Replacement, error) {
	switch name {
	case "recency", "lru":
		return LRUReplacement, nil
	case "access-count":
		return AccessCountReplacement, nil
	default:
		return 0, fmt.Errorf("unknown replacement policy %q", name)
	}
}

// Config describes the geometry and policies of a cache.
type Config struct {
	TotalBlocks      int
	Associativity    int
	BlockSizeBytes   int
	AddressWidthBits int
	Mapping          Mapping
	WritePolicy      WritePolicyKind
	Decoding         Decoding
	Replacement      Replacement
}

// NumSets returns the number of sets in the cache.
func (c Config) NumSets() int {
	return c.TotalBlocks / c.Associativity
}

// SizeInBytes returns the capacity of the cache.
func (c Config) SizeInBytes() int {
	return c.TotalBlocks * c.BlockSizeBytes
}

// Validate checks the geometry of the configuration. Decoding constraints are
// checked when the address decoder is created.
func (c Config) Validate() error {
	switch {
	case c.TotalBlocks <= 0:
		return invalid("total blocks must be positive, got %d", c.TotalBlocks)
	case c.BlockSizeBytes <= 0:
		return invalid("block size must be positive, got %d", c.BlockSizeBytes)
	case c.Associativity <= 0:
		return invalid("associativity must be positive, got %d",
			c.Associativity)
	case c.TotalBlocks%c.Associativity != 0:
		return invalid("associativity %d does not divide %d blocks",
			c.Associativity, c.TotalBlocks)
	}

	switch c.Mapping {
	case DirectMapped:
		if c.Associativity != 1 {
			return invalid("direct-mapped cache must be 1-way, got %d",
				c.Associativity)
		}
	case FullyAssociative:
		if c.Associativity != c.TotalBlocks {
			return invalid("fully-associative cache must have %d ways, got %d",
				c.TotalBlocks, c.Associativity)
		}
	case SetAssociative:
	default:
		return invalid("unknown mapping %s", c.Mapping)
	}

	switch c.WritePolicy {
	case WriteThrough, WriteBack:
	default:
		return invalid("unknown write policy %s", c.WritePolicy)
	}

	switch c.Replacement {
	case LRUReplacement, AccessCountReplacement:
	default:
		return invalid("unknown replacement %s", c.Replacement)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format,
		append([]any{ErrInvalidConfiguration}, args...)...)
}
