// Package batch runs many cache configurations over the same trace.
package batch

import (
	"github.com/sarchlab/cachesim/mem/cache"
)

// A Sweep enumerates cache configurations. Configurations are produced with
// an outer loop over BlockCounts and an inner loop over Ways.
type Sweep struct {
	BlockCounts      []int
	Ways             []int
	BlockSizeBytes   int
	AddressWidthBits int
	WritePolicy      cache.WritePolicyKind
	Decoding         cache.Decoding
	Replacement      cache.Replacement
}

// DefaultSweep covers 1 KB to 64 KB caches with 64-byte blocks and 1 to 16
// ways.
func DefaultSweep() Sweep {
	return Sweep{
		BlockCounts:      []int{16, 32, 64, 128, 256, 512, 1024},
		Ways:             []int{1, 2, 4, 8, 16},
		BlockSizeBytes:   64,
		AddressWidthBits: 32,
		WritePolicy:      cache.WriteBack,
		Decoding:         cache.ModuloDecoding,
		Replacement:      cache.LRUReplacement,
	}
}

// Configs returns the configurations of the sweep in sweep order. A 1-way
// configuration is direct-mapped and a configuration with as many ways as
// blocks is fully associative.
func (s Sweep) Configs() []cache.Config {
	configs := make([]cache.Config, 0, len(s.BlockCounts)*len(s.Ways))

	for _, blocks := range s.BlockCounts {
		for _, ways := range s.Ways {
			configs = append(configs, cache.Config{
				TotalBlocks:      blocks,
				Associativity:    ways,
				BlockSizeBytes:   s.BlockSizeBytes,
				AddressWidthBits: s.AddressWidthBits,
				Mapping:          mappingFor(blocks, ways),
				WritePolicy:      s.WritePolicy,
				Decoding:         s.Decoding,
				Replacement:      s.Replacement,
			})
		}
	}

	return configs
}

func mappingFor(blocks, ways int) cache.Mapping {
	switch ways {
	case 1:
		return cache.DirectMapped
	case blocks:
		return cache.FullyAssociative
	default:
		return cache.SetAssociative
	}
}
