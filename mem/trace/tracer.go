// Package trace reads memory traces and records how a cache served them.
package trace

import (
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim"
)

// accessEntry represents one simulated reference in the database
type accessEntry struct {
	RunID        string
	Seq          uint64
	Op           string
	Address      uint64
	Hit          bool
	Cycles       uint64
	EvictedDirty bool
}

// runEntry represents the summary of a run in the database
type runEntry struct {
	RunID          string
	Simulator      string
	Reads          uint64
	Writes         uint64
	ReadMisses     uint64
	WriteMisses    uint64
	Cycles         uint64
	DirtyEvictions uint64
}

// A tracer is a hook that logs every reference a simulator handles.
type tracer struct {
	logger *log.Logger
}

// NewTracer creates a hook that prints one line per reference.
func NewTracer(logger *log.Logger) sim.Hook {
	return &tracer{logger: logger}
}

func (t *tracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAccess {
		return
	}

	ref := ctx.Item.(mem.Reference)
	detail := ctx.Detail.(sim.AccessDetail)

	outcome := "miss"
	if detail.Hit {
		outcome = "hit"
	}

	t.logger.Printf("%s, 0x%x, %s, %d\n",
		ref.Op, ref.Address, outcome, detail.Cycles)
}

// A DBTracer is a hook that records every reference a simulator handles into
// a database.
type DBTracer struct {
	dataRecorder datarecording.DataRecorder
	runID        string
	seq          uint64
}

// NewDBTracer creates a new database-based tracer.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable("cache_accesses", accessEntry{})
	t.dataRecorder.CreateTable("cache_runs", runEntry{})

	return t
}

// RunID returns the ID of the run being recorded.
func (t *DBTracer) RunID() string {
	return t.runID
}

func (t *DBTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosRunStart:
		t.runID = xid.New().String()
		t.seq = 0
	case sim.HookPosAccess:
		t.recordAccess(ctx)
	case sim.HookPosRunEnd:
		t.recordRun(ctx)
	}
}

func (t *DBTracer) recordAccess(ctx sim.HookCtx) {
	ref := ctx.Item.(mem.Reference)
	detail := ctx.Detail.(sim.AccessDetail)

	entry := accessEntry{
		RunID:        t.runID,
		Seq:          t.seq,
		Op:           ref.Op.String(),
		Address:      ref.Address,
		Hit:          detail.Hit,
		Cycles:       detail.Cycles,
		EvictedDirty: detail.EvictedDirty,
	}
	t.seq++

	t.dataRecorder.InsertData("cache_accesses", entry)
}

func (t *DBTracer) recordRun(ctx sim.HookCtx) {
	stats := ctx.Detail.(sim.Stats)

	name := ""
	if s, ok := ctx.Domain.(interface{ Name() string }); ok {
		name = s.Name()
	}

	t.dataRecorder.InsertData("cache_runs", runEntry{
		RunID:          t.runID,
		Simulator:      name,
		Reads:          stats.Reads,
		Writes:         stats.Writes,
		ReadMisses:     stats.ReadMisses,
		WriteMisses:    stats.WriteMisses,
		Cycles:         stats.Cycles,
		DirtyEvictions: stats.DirtyEvictions,
	})
}
