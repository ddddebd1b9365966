package tagging

// TagArray holds the blocks of a cache, grouped into sets.
type TagArray interface {
	NumSets() int
	NumWays() int
	GetSet(setID int) *Set
	Lookup(setID int, tag uint64) (*Block, bool)
	Occupied() int
	Reset()
}

// NewTagArray creates a tag array with all blocks empty.
func NewTagArray(numSets, numWays int) TagArray {
	t := &tagArrayImpl{
		numSets: numSets,
		numWays: numWays,
		blocks:  make([]Block, numSets*numWays),
		sets:    make([]Set, numSets),
	}

	for i := range t.sets {
		t.sets[i].Blocks = t.blocks[i*numWays : (i+1)*numWays]
	}

	t.Reset()

	return t
}

// A Block of a cache is the information that is associated with a cache line
type Block struct {
	Tag         uint64
	SetID       int
	WayID       int
	IsValid     bool
	IsDirty     bool
	Recency     int
	AccessCount int
}

// A Set is a list of blocks where a certain piece memory can be stored at.
type Set struct {
	Blocks []Block
}

// Occupied returns the number of valid blocks in the set.
func (s *Set) Occupied() int {
	n := 0

	for i := range s.Blocks {
		if s.Blocks[i].IsValid {
			n++
		}
	}

	return n
}

type tagArrayImpl struct {
	numSets int
	numWays int

	// blocks is the arena; each set is a window of numWays blocks.
	blocks []Block
	sets   []Set
}

func (t *tagArrayImpl) NumSets() int {
	return t.numSets
}

func (t *tagArrayImpl) NumWays() int {
	return t.numWays
}

// GetSet returns the set with the given index.
func (t *tagArrayImpl) GetSet(setID int) *Set {
	return &t.sets[setID]
}

// Lookup finds the valid block holding tag in the given set.
func (t *tagArrayImpl) Lookup(setID int, tag uint64) (*Block, bool) {
	set := &t.sets[setID]
	for i := range set.Blocks {
		block := &set.Blocks[i]
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return nil, false
}

// Occupied returns the number of valid blocks in the whole array.
func (t *tagArrayImpl) Occupied() int {
	n := 0

	for i := range t.sets {
		n += t.sets[i].Occupied()
	}

	return n
}

// Reset will mark all the blocks in the array invalid
func (t *tagArrayImpl) Reset() {
	for i := range t.blocks {
		t.blocks[i] = Block{
			SetID: i / t.numWays,
			WayID: i % t.numWays,
		}
	}
}
