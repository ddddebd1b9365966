package batch

import (
	"runtime"
	"slices"
	"sync"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim"
)

// Progress is notified as configurations start and finish.
type Progress interface {
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
}

// A Trace is a named sequence of references held in memory.
type Trace struct {
	Name string
	Refs []mem.Reference
}

// Skipped is a configuration that could not be simulated.
type Skipped struct {
	Config cache.Config
	Err    error
}

// Result holds the outcome of a sweep. Records and Stats are in sweep order
// and exclude skipped configurations.
type Result struct {
	SweepID string
	Records []Record
	Stats   []sim.Stats
	Configs []cache.Config
	Skipped []Skipped
}

// Runner simulates every configuration of a sweep.
type Runner struct {
	parallelism  int
	dataRecorder datarecording.DataRecorder
	progress     Progress
}

// Builder can build runners.
type Builder struct {
	parallelism  int
	dataRecorder datarecording.DataRecorder
	progress     Progress
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// WithParallelism sets how many configurations are simulated at once.
func (b Builder) WithParallelism(n int) Builder {
	b.parallelism = n
	return b
}

// WithDataRecorder makes the runner store every record in the database.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.dataRecorder = r
	return b
}

// WithProgress sets the tracker to report progress to.
func (b Builder) WithProgress(p Progress) Builder {
	b.progress = p
	return b
}

// Build creates the runner.
func (b Builder) Build() *Runner {
	if b.parallelism < 1 {
		b.parallelism = 1
	}

	r := &Runner{
		parallelism:  b.parallelism,
		dataRecorder: b.dataRecorder,
		progress:     b.progress,
	}

	if r.dataRecorder != nil &&
		!slices.Contains(r.dataRecorder.ListTables(), resultTable) {
		r.dataRecorder.CreateTable(resultTable, resultEntry{})
	}

	return r
}

type slot struct {
	config cache.Config
	stats  sim.Stats
	err    error
}

// Run simulates every configuration of the sweep over the trace. Each
// configuration gets its own cache, so runs share no state. Invalid
// configurations are reported in Result.Skipped.
func (r *Runner) Run(t Trace, sweep Sweep) Result {
	configs := sweep.Configs()
	slots := make([]slot, len(configs))
	jobs := make(chan int)

	var wg sync.WaitGroup

	for range min(r.parallelism, len(configs)) {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				slots[i] = r.runOne(t, configs[i])
			}
		}()
	}

	for i := range configs {
		jobs <- i
	}

	close(jobs)
	wg.Wait()

	return r.collect(t, slots)
}

func (r *Runner) runOne(t Trace, config cache.Config) slot {
	if r.progress != nil {
		r.progress.IncrementInProgress(1)
		defer r.progress.MoveInProgressToFinished(1)
	}

	c, err := cache.New(config)
	if err != nil {
		return slot{config: config, err: err}
	}

	s := sim.NewSimulator(t.Name, c)

	stats, err := s.Run(trace.NewSliceReader(t.Refs))

	return slot{config: config, stats: stats, err: err}
}

func (r *Runner) collect(t Trace, slots []slot) Result {
	result := Result{SweepID: xid.New().String()}

	for _, s := range slots {
		if s.err != nil {
			result.Skipped = append(result.Skipped,
				Skipped{Config: s.config, Err: s.err})

			continue
		}

		record := NewRecord(s.config, s.stats, t.Name)

		result.Records = append(result.Records, record)
		result.Stats = append(result.Stats, s.stats)
		result.Configs = append(result.Configs, s.config)

		r.recordToDB(result.SweepID, record, s)
	}

	if r.dataRecorder != nil {
		r.dataRecorder.Flush()
	}

	return result
}

func (r *Runner) recordToDB(sweepID string, record Record, s slot) {
	if r.dataRecorder == nil {
		return
	}

	r.dataRecorder.InsertData(resultTable, resultEntry{
		SweepID:        sweepID,
		CacheSizeKB:    record.CacheSizeKB,
		NWays:          record.NWays,
		NSets:          record.NSets,
		TotalMissRate:  float64(record.TotalMissRate),
		WriteMissRate:  float64(record.WriteMissRate),
		ReadMissRate:   float64(record.ReadMissRate),
		TraceFile:      record.TraceFile,
		Mapping:        s.config.Mapping.String(),
		WritePolicy:    s.config.WritePolicy.String(),
		Cycles:         s.stats.Cycles,
		DirtyEvictions: s.stats.DirtyEvictions,
	})
}
