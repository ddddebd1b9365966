package cache

import "math/bits"

// An AddressDecoder splits an address into the tag that identifies a block,
// the index of the set the block lives in, and the byte offset in the block.
type AddressDecoder interface {
	Decode(address uint64) (tag uint64, index int, offset uint64)
}

// NewAddressDecoder creates the decoder selected by the configuration.
func NewAddressDecoder(c Config) (AddressDecoder, error) {
	switch c.Decoding {
	case ModuloDecoding:
		return moduloDecoder{
			blockSize: uint64(c.BlockSizeBytes),
			numSets:   uint64(c.NumSets()),
		}, nil
	case BitFieldDecoding:
		return newBitFieldDecoder(c)
	default:
		return nil, invalid("unknown decoding %s", c.Decoding)
	}
}

type moduloDecoder struct {
	blockSize uint64
	numSets   uint64
}

func (d moduloDecoder) Decode(address uint64) (uint64, int, uint64) {
	offset := address % d.blockSize
	blockAddr := address / d.blockSize

	return blockAddr / d.numSets, int(blockAddr % d.numSets), offset
}

type bitFieldDecoder struct {
	offsetBits  int
	indexBits   int
	addressMask uint64
}

func newBitFieldDecoder(c Config) (bitFieldDecoder, error) {
	numSets := c.NumSets()

	if !isPowerOfTwo(c.BlockSizeBytes) {
		return bitFieldDecoder{}, invalid(
			"block size %d is not a power of two", c.BlockSizeBytes)
	}

	if !isPowerOfTwo(numSets) {
		return bitFieldDecoder{}, invalid(
			"number of sets %d is not a power of two", numSets)
	}

	offsetBits := log2(c.BlockSizeBytes)
	indexBits := log2(numSets)

	if c.AddressWidthBits <= 0 || c.AddressWidthBits > 64 {
		return bitFieldDecoder{}, invalid(
			"address width %d is out of range (1-64)", c.AddressWidthBits)
	}

	if offsetBits+indexBits > c.AddressWidthBits {
		return bitFieldDecoder{}, invalid(
			"%d-bit address cannot hold %d offset bits and %d index bits",
			c.AddressWidthBits, offsetBits, indexBits)
	}

	mask := ^uint64(0)
	if c.AddressWidthBits < 64 {
		mask = uint64(1)<<c.AddressWidthBits - 1
	}

	return bitFieldDecoder{
		offsetBits:  offsetBits,
		indexBits:   indexBits,
		addressMask: mask,
	}, nil
}

// Decode drops the address bits above the address width.
func (d bitFieldDecoder) Decode(address uint64) (uint64, int, uint64) {
	address &= d.addressMask

	offset := address & (uint64(1)<<d.offsetBits - 1)
	index := (address >> d.offsetBits) & (uint64(1)<<d.indexBits - 1)
	tag := address >> (d.offsetBits + d.indexBits)

	return tag, int(index), offset
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func log2(n int) int {
	return bits.TrailingZeros64(uint64(n))
}
