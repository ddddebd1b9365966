package sim

import (
	"math"
	"strconv"
)

// MissRate is the fraction of accesses that missed. It is NaN when there were
// no accesses to divide by.
type MissRate float64

// UndefinedMissRate is the rate of a category with no accesses.
func UndefinedMissRate() MissRate {
	return MissRate(math.NaN())
}

// NewMissRate divides misses by accesses.
func NewMissRate(misses, accesses uint64) MissRate {
	if accesses == 0 {
		return UndefinedMissRate()
	}

	return MissRate(float64(misses) / float64(accesses))
}

// IsDefined returns false if the rate has no accesses behind it.
func (r MissRate) IsDefined() bool {
	return !math.IsNaN(float64(r))
}

func (r MissRate) String() string {
	if !r.IsDefined() {
		return "undefined"
	}

	return strconv.FormatFloat(float64(r), 'f', 4, 64)
}

// MarshalJSON encodes an undefined rate as null.
func (r MissRate) MarshalJSON() ([]byte, error) {
	if !r.IsDefined() {
		return []byte("null"), nil
	}

	return strconv.AppendFloat(nil, float64(r), 'g', -1, 64), nil
}
