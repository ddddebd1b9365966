package cache

// Builder can build caches.
type Builder struct {
	totalBlocks  int
	ways         int
	blockSize    int
	addressWidth int
	mapping      Mapping
	writePolicy  WritePolicyKind
	decoding     Decoding
	replacement  Replacement
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		totalBlocks:  4,
		ways:         2,
		blockSize:    1,
		addressWidth: 32,
		mapping:      DirectMapped,
		writePolicy:  WriteThrough,
		decoding:     ModuloDecoding,
		replacement:  LRUReplacement,
	}
}

// WithTotalBlocks sets the number of blocks in the cache.
func (b Builder) WithTotalBlocks(n int) Builder {
	b.totalBlocks = n
	return b
}

// WithWays sets the associativity used by set-associative caches. Direct-mapped
// and fully-associative caches derive their associativity from the mapping.
func (b Builder) WithWays(n int) Builder {
	b.ways = n
	return b
}

// WithBlockSize sets the block size in bytes.
func (b Builder) WithBlockSize(n int) Builder {
	b.blockSize = n
	return b
}

// WithAddressWidth sets the number of address bits seen by a bit-field
// decoder.
func (b Builder) WithAddressWidth(n int) Builder {
	b.addressWidth = n
	return b
}

// WithMapping sets the mapping strategy.
func (b Builder) WithMapping(m Mapping) Builder {
	b.mapping = m
	return b
}

// WithWritePolicy sets the write policy.
func (b Builder) WithWritePolicy(k WritePolicyKind) Builder {
	b.writePolicy = k
	return b
}

// WithDecoding sets how addresses are decoded.
func (b Builder) WithDecoding(d Decoding) Builder {
	b.decoding = d
	return b
}

// WithReplacement sets the replacement policy.
func (b Builder) WithReplacement(r Replacement) Builder {
	b.replacement = r
	return b
}

// Config returns the configuration that Build would use.
func (b Builder) Config() Config {
	ways := b.ways

	switch b.mapping {
	case DirectMapped:
		ways = 1
	case FullyAssociative:
		ways = b.totalBlocks
	}

	return Config{
		TotalBlocks:      b.totalBlocks,
		Associativity:    ways,
		BlockSizeBytes:   b.blockSize,
		AddressWidthBits: b.addressWidth,
		Mapping:          b.mapping,
		WritePolicy:      b.writePolicy,
		Decoding:         b.decoding,
		Replacement:      b.replacement,
	}
}

// Build builds a new empty cache.
func (b Builder) Build() (*Cache, error) {
	return New(b.Config())
}
