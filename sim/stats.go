package sim

// Stats are the counters collected during one run.
type Stats struct {
	Reads          uint64
	Writes         uint64
	ReadMisses     uint64
	WriteMisses    uint64
	Cycles         uint64
	DirtyEvictions uint64
}

// Accesses returns the number of references simulated.
func (s Stats) Accesses() uint64 {
	return s.Reads + s.Writes
}

// Misses returns the number of references that missed.
func (s Stats) Misses() uint64 {
	return s.ReadMisses + s.WriteMisses
}

// ReadMissRate returns the miss rate of reads.
func (s Stats) ReadMissRate() MissRate {
	return NewMissRate(s.ReadMisses, s.Reads)
}

// WriteMissRate returns the miss rate of writes.
func (s Stats) WriteMissRate() MissRate {
	return NewMissRate(s.WriteMisses, s.Writes)
}

// TotalMissRate returns the miss rate of all references.
func (s Stats) TotalMissRate() MissRate {
	return NewMissRate(s.Misses(), s.Accesses())
}
