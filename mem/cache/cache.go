package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
)

// A BlockRef points to a block slot in the cache.
type BlockRef struct {
	SetID int
	WayID int
}

// Cache stores the tags of the blocks it holds. It does not store data; it
// only decides hits, misses, and evictions.
type Cache struct {
	config       Config
	decoder      AddressDecoder
	tags         tagging.TagArray
	victimFinder tagging.VictimFinder
	writePolicy  WritePolicy
}

// New creates an empty cache.
func New(config Config) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	decoder, err := NewAddressDecoder(config)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		config:      config,
		decoder:     decoder,
		tags:        tagging.NewTagArray(config.NumSets(), config.Associativity),
		writePolicy: NewWritePolicy(config.WritePolicy),
	}

	switch config.Replacement {
	case LRUReplacement:
		c.victimFinder = tagging.NewLRUVictimFinder()
	case AccessCountReplacement:
		c.victimFinder = tagging.NewAccessCountVictimFinder()
	}

	return c, nil
}

// Config returns the configuration the cache was built with.
func (c *Cache) Config() Config {
	return c.config
}

// NumSets returns the number of sets.
func (c *Cache) NumSets() int {
	return c.tags.NumSets()
}

// Ways returns the number of blocks in each set.
func (c *Cache) Ways() int {
	return c.tags.NumWays()
}

// WritePolicy returns the policy that handles writes to this cache.
func (c *Cache) WritePolicy() WritePolicy {
	return c.writePolicy
}

// Probe looks up the address. A hit counts as an access for the replacement
// policy.
func (c *Cache) Probe(address uint64) (BlockRef, bool) {
	tag, setID, _ := c.decoder.Decode(address)

	block, ok := c.tags.Lookup(setID, tag)
	if !ok {
		return BlockRef{}, false
	}

	c.victimFinder.Visit(c.tags.GetSet(setID), block.WayID)

	return BlockRef{SetID: block.SetID, WayID: block.WayID}, true
}

// Contains reports whether the address is cached without touching the
// replacement state.
func (c *Cache) Contains(address uint64) bool {
	tag, setID, _ := c.decoder.Decode(address)
	_, ok := c.tags.Lookup(setID, tag)

	return ok
}

// Install places the block of the address into the cache, replacing a victim
// chosen by the replacement policy. It returns true if the victim was dirty
// and has to be written back. The address must not be cached already.
func (c *Cache) Install(address uint64) (evictedDirty bool) {
	tag, setID, _ := c.decoder.Decode(address)
	set := c.tags.GetSet(setID)

	victim := c.victimFinder.FindVictim(set)
	evictedDirty = victim.IsValid && victim.IsDirty

	victim.Tag = tag
	victim.IsValid = true
	victim.IsDirty = false
	victim.Recency = 0
	victim.AccessCount = 0

	c.victimFinder.Visit(set, victim.WayID)

	return evictedDirty
}

// MarkDirty flags the block holding the address as modified.
func (c *Cache) MarkDirty(address uint64) {
	tag, setID, _ := c.decoder.Decode(address)

	block, ok := c.tags.Lookup(setID, tag)
	if !ok {
		panic(fmt.Sprintf("cannot mark 0x%x dirty, it is not cached", address))
	}

	block.IsDirty = true
}

// IsDirty reports whether the address is cached in a dirty block.
func (c *Cache) IsDirty(address uint64) bool {
	tag, setID, _ := c.decoder.Decode(address)
	block, ok := c.tags.Lookup(setID, tag)

	return ok && block.IsDirty
}

// OccupiedBlocks returns the number of valid blocks.
func (c *Cache) OccupiedBlocks() int {
	return c.tags.Occupied()
}

// Reset empties the cache.
func (c *Cache) Reset() {
	c.tags.Reset()
}
