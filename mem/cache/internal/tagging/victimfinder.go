package tagging

// RecencyCap is the saturation value of a block's recency counter.
const RecencyCap = 10

// A VictimFinder decides which block should be evicted.
type VictimFinder interface {
	// Visit records an access to the block at way of the set.
	Visit(set *Set, way int)

	// FindVictim returns the block to be replaced in the set.
	FindVictim(set *Set) *Block
}

// LRUVictimFinder approximates least-recently-used eviction with a bounded
// recency counter per block.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// Visit raises the visited block's counter and ages all the other blocks in
// the set.
func (e *LRUVictimFinder) Visit(set *Set, way int) {
	for i := range set.Blocks {
		block := &set.Blocks[i]

		if i == way {
			block.Recency = min(block.Recency+1, RecencyCap)
			continue
		}

		block.Recency = max(block.Recency-1, 0)
	}
}

// FindVictim returns an empty block if there is one. Otherwise, it returns the
// block with the lowest recency. Ties go to the lowest way.
func (e *LRUVictimFinder) FindVictim(set *Set) *Block {
	if block := firstInvalid(set); block != nil {
		return block
	}

	victim := &set.Blocks[0]
	for i := 1; i < len(set.Blocks); i++ {
		if set.Blocks[i].Recency < victim.Recency {
			victim = &set.Blocks[i]
		}
	}

	return victim
}

// AccessCountVictimFinder evicts the block that has been accessed the fewest
// times since it was installed.
type AccessCountVictimFinder struct {
}

// NewAccessCountVictimFinder returns a newly constructed access count evictor.
func NewAccessCountVictimFinder() *AccessCountVictimFinder {
	return &AccessCountVictimFinder{}
}

// Visit counts an access to the block.
func (e *AccessCountVictimFinder) Visit(set *Set, way int) {
	set.Blocks[way].AccessCount++
}

// FindVictim returns an empty block if there is one. Otherwise, it returns the
// block with the fewest accesses. Ties go to the lowest way.
func (e *AccessCountVictimFinder) FindVictim(set *Set) *Block {
	if block := firstInvalid(set); block != nil {
		return block
	}

	victim := &set.Blocks[0]
	for i := 1; i < len(set.Blocks); i++ {
		if set.Blocks[i].AccessCount < victim.AccessCount {
			victim = &set.Blocks[i]
		}
	}

	return victim
}

func firstInvalid(set *Set) *Block {
	for i := range set.Blocks {
		if !set.Blocks[i].IsValid {
			return &set.Blocks[i]
		}
	}

	return nil
}
