package simulation

import (
	"io"
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
)

// Builder can be used to build a simulation.
type Builder struct {
	recordOn       bool
	outputFileName string
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
	accessLog      io.Writer
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithRecording makes the simulation store its results in a database with a
// generated name.
func (b Builder) WithRecording() Builder {
	b.recordOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// It implies recording.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordOn = true
	b.outputFileName = filename

	return b
}

// WithMonitoring starts a monitoring server with the simulation.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page once the server is up.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithAccessLog prints every access the simulators handle to w.
func (b Builder) WithAccessLog(w io.Writer) Builder {
	b.accessLog = w
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		panic("browser cannot be opened when monitoring is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id:           xid.New().String(),
		simNameIndex: make(map[string]int),
	}

	if b.recordOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "cachesim_" + s.id
		}

		recorder, err := datarecording.New(outputPath)
		if err != nil {
			return nil, err
		}

		s.dataRecorder = recorder
	}

	if b.accessLog != nil {
		s.accessLogger = trace.NewTracer(log.New(b.accessLog, "", 0))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}

		url := s.monitor.StartServer()
		if b.openBrowser {
			monitoring.OpenInBrowser(url)
		}
	}

	return s, nil
}
