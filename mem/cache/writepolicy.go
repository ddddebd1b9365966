package cache

import "fmt"

// Cycle costs of the memory system.
const (
	// MemoryTime is the cost of one round trip to the backing memory.
	MemoryTime uint64 = 50

	// HitTime is the cost of an access served by the cache.
	HitTime uint64 = 1
)

// DirtyMarker can flag a cached block as modified.
type DirtyMarker interface {
	MarkDirty(address uint64)
}

// A WritePolicy decides what a write costs and whether it leaves the block
// dirty.
type WritePolicy interface {
	Kind() WritePolicyKind

	// WriteHit handles a write to a block that is already cached.
	WriteHit(m DirtyMarker, address uint64) (cycles uint64)

	// WriteMiss handles a write after the block has been installed.
	WriteMiss(m DirtyMarker, address uint64) (cycles uint64)
}

// NewWritePolicy returns the write policy of the given kind.
func NewWritePolicy(kind WritePolicyKind) WritePolicy {
	switch kind {
	case WriteThrough:
		return writeThroughPolicy{}
	case WriteBack:
		return writeBackPolicy{}
	default:
		panic(fmt.Sprintf("unknown write policy %s", kind))
	}
}

// EvictionCost returns the cycles spent flushing a victim block.
func EvictionCost(evictedDirty bool) uint64 {
	if evictedDirty {
		return MemoryTime
	}

	return 0
}

type writeThroughPolicy struct{}

func (writeThroughPolicy) Kind() WritePolicyKind {
	return WriteThrough
}

func (writeThroughPolicy) WriteHit(_ DirtyMarker, _ uint64) uint64 {
	return MemoryTime + HitTime
}

func (writeThroughPolicy) WriteMiss(_ DirtyMarker, _ uint64) uint64 {
	return MemoryTime + HitTime
}

type writeBackPolicy struct{}

func (writeBackPolicy) Kind() WritePolicyKind {
	return WriteBack
}

func (writeBackPolicy) WriteHit(m DirtyMarker, address uint64) uint64 {
	m.MarkDirty(address)
	return HitTime
}

func (writeBackPolicy) WriteMiss(m DirtyMarker, address uint64) uint64 {
	m.MarkDirty(address)
	return HitTime
}
