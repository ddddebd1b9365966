package simulation

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/sarchlab/cachesim/batch"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/mem/trace"
)

func newCache() *cache.Cache {
	c, err := cache.MakeBuilder().
		WithTotalBlocks(4).
		WithMapping(cache.DirectMapped).
		Build()
	Expect(err).NotTo(HaveOccurred())

	return c
}

var refs = []mem.Reference{
	{Op: mem.Read, Address: 0},
	{Op: mem.Read, Address: 4},
	{Op: mem.Read, Address: 0},
}

var _ = Describe("Simulation", func() {
	var (
		simulation *Simulation
	)

	AfterEach(func() {
		Expect(simulation.Terminate()).To(Succeed())
	})

	Context("without services", func() {
		BeforeEach(func() {
			var err error
			simulation, err = MakeBuilder().Build()
			Expect(err).NotTo(HaveOccurred())
		})

		It("should register simulators", func() {
			s := simulation.NewSimulator("Cache", newCache())

			Expect(simulation.GetSimulatorByName("Cache")).To(BeIdenticalTo(s))
			Expect(simulation.GetSimulatorByName("None")).To(BeNil())
			Expect(simulation.Simulators()).To(HaveLen(1))
			Expect(s.NumHooks()).To(Equal(0))
			Expect(simulation.GetDataRecorder()).To(BeNil())
			Expect(simulation.GetMonitor()).To(BeNil())
		})

		It("should panic on duplicated simulator names", func() {
			simulation.NewSimulator("Cache", newCache())

			Expect(func() {
				simulation.NewSimulator("Cache", newCache())
			}).To(Panic())
		})

		It("should run a sweep", func() {
			sweep := batch.Sweep{
				BlockCounts:    []int{4, 8},
				Ways:           []int{1, 2},
				BlockSizeBytes: 1,
				WritePolicy:    cache.WriteBack,
			}

			result := simulation.RunSweep(
				batch.Trace{Name: "t", Refs: refs}, sweep, 2)

			Expect(result.Records).To(HaveLen(4))
			Expect(result.Stats[0].Cycles).To(Equal(uint64(150)))
		})
	})

	It("should reject a monitor port without monitoring", func() {
		simulation, _ = MakeBuilder().Build()

		Expect(func() {
			_, _ = MakeBuilder().WithMonitorPort(8080).Build()
		}).To(Panic())
	})

	It("should name the default database after the simulation", func() {
		var err error
		simulation, err = MakeBuilder().WithRecording().Build()
		Expect(err).NotTo(HaveOccurred())

		filename := "cachesim_" + simulation.ID() + ".sqlite3"
		defer os.Remove(filename)

		other, err := MakeBuilder().Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(simulation.ID()).NotTo(BeEmpty())
		Expect(simulation.ID()).NotTo(Equal(other.ID()))
		Expect(simulation.GetDataRecorder()).NotTo(BeNil())

		simulation.GetDataRecorder().CreateTable("t", struct{ Value int }{})
		Expect(filename).To(BeAnExistingFile())

		Expect(simulation.Terminate()).To(Succeed())
		simulation = other
	})

	It("should run several sweeps with recording and monitoring", func() {
		path := filepath.Join(GinkgoT().TempDir(), "sweeps")

		var err error
		simulation, err = MakeBuilder().
			WithOutputFileName(path).
			WithMonitoring().
			Build()
		Expect(err).NotTo(HaveOccurred())
		Expect(simulation.GetMonitor()).NotTo(BeNil())

		sweep := batch.Sweep{
			BlockCounts:    []int{4, 8},
			Ways:           []int{1, 2},
			BlockSizeBytes: 1,
			WritePolicy:    cache.WriteThrough,
		}
		t := batch.Trace{Name: "t", Refs: refs}

		first := simulation.RunSweep(t, sweep, 2)
		second := simulation.RunSweep(t, sweep, 2)

		Expect(second.Records).To(Equal(first.Records))
		Expect(simulation.Terminate()).To(Succeed())
		simulation, _ = MakeBuilder().Build()

		db, err := sql.Open("sqlite3", path+".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var rows int
		Expect(db.QueryRow("SELECT COUNT(*) FROM batch_results").
			Scan(&rows)).To(Succeed())
		Expect(rows).To(Equal(8))
	})

	It("should log accesses", func() {
		buf := new(bytes.Buffer)

		var err error
		simulation, err = MakeBuilder().WithAccessLog(buf).Build()
		Expect(err).NotTo(HaveOccurred())

		s := simulation.NewSimulator("Cache", newCache())
		_, err = s.Run(trace.NewSliceReader(refs))
		Expect(err).NotTo(HaveOccurred())

		Expect(buf.String()).To(Equal(
			"R, 0x0, miss, 50\nR, 0x4, miss, 50\nR, 0x0, miss, 50\n"))
	})

	It("should record accesses to the output file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "out")

		var err error
		simulation, err = MakeBuilder().WithOutputFileName(path).Build()
		Expect(err).NotTo(HaveOccurred())

		s := simulation.NewSimulator("Cache", newCache())
		_, err = s.Run(trace.NewSliceReader(refs))
		Expect(err).NotTo(HaveOccurred())

		Expect(simulation.Terminate()).To(Succeed())
		simulation, _ = MakeBuilder().Build()

		db, err := sql.Open("sqlite3", path+".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var accesses, runs int
		Expect(db.QueryRow("SELECT COUNT(*) FROM cache_accesses").
			Scan(&accesses)).To(Succeed())
		Expect(db.QueryRow("SELECT COUNT(*) FROM cache_runs").
			Scan(&runs)).To(Succeed())
		Expect(accesses).To(Equal(3))
		Expect(runs).To(Equal(1))
	})
})
