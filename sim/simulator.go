package sim

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mem"
)

// A ReferenceSource provides the references of a trace one at a time. It
// returns io.EOF when the trace is exhausted.
type ReferenceSource interface {
	Next() (mem.Reference, error)
}

// AccessDetail describes what happened to one reference.
type AccessDetail struct {
	Hit          bool
	Cycles       uint64
	EvictedDirty bool
}

// A Simulator replays a trace through a cache.
type Simulator struct {
	HookableBase

	name  string
	cache *cache.Cache
	stats Stats
}

// NewSimulator creates a simulator that drives the given cache.
func NewSimulator(name string, c *cache.Cache) *Simulator {
	return &Simulator{
		name:  name,
		cache: c,
	}
}

// Name returns the name of the simulator.
func (s *Simulator) Name() string {
	return s.name
}

// Cache returns the cache being simulated.
func (s *Simulator) Cache() *cache.Cache {
	return s.cache
}

// Stats returns the counters of the current run.
func (s *Simulator) Stats() Stats {
	return s.stats
}

// Run clears the counters and simulates every reference of the source. The
// cache is not reset; call Reset on the cache to start cold.
func (s *Simulator) Run(src ReferenceSource) (Stats, error) {
	s.stats = Stats{}
	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosRunStart})

	for {
		ref, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return s.stats, fmt.Errorf("%s: %w", s.name, err)
		}

		s.Access(ref)
	}

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosRunEnd, Detail: s.stats})

	return s.stats, nil
}

// Access simulates a single reference.
func (s *Simulator) Access(ref mem.Reference) AccessDetail {
	var detail AccessDetail

	switch ref.Op {
	case mem.Read:
		detail = s.read(ref.Address)
	case mem.Write:
		detail = s.write(ref.Address)
	default:
		panic(fmt.Sprintf("unknown op %d", int(ref.Op)))
	}

	s.stats.Cycles += detail.Cycles
	if detail.EvictedDirty {
		s.stats.DirtyEvictions++
	}

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosAccess,
		Item:   ref,
		Detail: detail,
	})

	return detail
}

func (s *Simulator) read(addr uint64) AccessDetail {
	s.stats.Reads++

	if _, hit := s.cache.Probe(addr); hit {
		return AccessDetail{Hit: true, Cycles: cache.HitTime}
	}

	s.stats.ReadMisses++

	evictedDirty := s.cache.Install(addr)

	return AccessDetail{
		Cycles:       cache.MemoryTime + cache.EvictionCost(evictedDirty),
		EvictedDirty: evictedDirty,
	}
}

func (s *Simulator) write(addr uint64) AccessDetail {
	s.stats.Writes++
	policy := s.cache.WritePolicy()

	if _, hit := s.cache.Probe(addr); hit {
		return AccessDetail{Hit: true, Cycles: policy.WriteHit(s.cache, addr)}
	}

	s.stats.WriteMisses++

	evictedDirty := s.cache.Install(addr)
	cycles := cache.EvictionCost(evictedDirty) + policy.WriteMiss(s.cache, addr)

	return AccessDetail{Cycles: cycles, EvictedDirty: evictedDirty}
}
