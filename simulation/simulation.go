// Package simulation assembles the services a cache simulation run uses.
package simulation

import (
	"fmt"

	"github.com/sarchlab/cachesim/batch"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/sim"
)

// A Simulation owns the data recorder, the monitor, and the simulators of
// one invocation.
type Simulation struct {
	id string

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	dbTracer     *trace.DBTracer
	accessLogger sim.Hook

	simulators   []*sim.Simulator
	simNameIndex map[string]int
	numSweeps    int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// if recording is disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil if
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// NewSimulator creates a simulator driving the cache and registers it with
// the simulation. Accesses are recorded if recording is enabled.
func (s *Simulation) NewSimulator(name string, c *cache.Cache) *sim.Simulator {
	if _, found := s.simNameIndex[name]; found {
		panic("simulator " + name + " already registered")
	}

	simulator := sim.NewSimulator(name, c)

	if s.dataRecorder != nil {
		if s.dbTracer == nil {
			s.dbTracer = trace.NewDBTracer(s.dataRecorder)
		}

		simulator.AcceptHook(s.dbTracer)
	}

	if s.accessLogger != nil {
		simulator.AcceptHook(s.accessLogger)
	}

	s.simulators = append(s.simulators, simulator)
	s.simNameIndex[name] = len(s.simulators) - 1

	return simulator
}

// GetSimulatorByName returns the simulator with the given name.
func (s *Simulation) GetSimulatorByName(name string) *sim.Simulator {
	i, found := s.simNameIndex[name]
	if !found {
		return nil
	}

	return s.simulators[i]
}

// Simulators returns all the registered simulators.
func (s *Simulation) Simulators() []*sim.Simulator {
	return s.simulators
}

// RunSweep simulates every configuration of the sweep over the trace. The
// results are recorded and progress is reported to the monitor when those
// services are enabled.
func (s *Simulation) RunSweep(
	t batch.Trace,
	sweep batch.Sweep,
	parallelism int,
) batch.Result {
	builder := batch.MakeBuilder().WithParallelism(parallelism)

	if s.dataRecorder != nil {
		builder = builder.WithDataRecorder(s.dataRecorder)
	}

	if s.monitor != nil {
		s.numSweeps++
		s.monitor.RegisterObject(
			fmt.Sprintf("sweep%d_%s", s.numSweeps, t.Name), &sweep)

		bar := s.monitor.CreateProgressBar(
			"Sweep "+t.Name, uint64(len(sweep.Configs())))
		defer s.monitor.CompleteProgressBar(bar)

		builder = builder.WithProgress(bar)
	}

	return builder.Build().Run(t, sweep)
}

// Terminate flushes and closes the data recorder.
func (s *Simulation) Terminate() error {
	if s.dataRecorder == nil {
		return nil
	}

	return s.dataRecorder.Close()
}
