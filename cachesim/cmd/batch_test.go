package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/batch"
	"github.com/sarchlab/cachesim/mem/cache"
)

var _ = Describe("Batch", func() {
	var (
		opts batchOptions
		path string
	)

	BeforeEach(func() {
		opts = batchOptions{
			sweep: batch.Sweep{
				BlockCounts:      []int{4, 6},
				Ways:             []int{1, 4},
				BlockSizeBytes:   1,
				AddressWidthBits: 32,
				WritePolicy:      cache.WriteBack,
			},
			parallel: 2,
		}
		path = writeTrace("R 0x0 0 0\nW 0x4 04 4\nR 0x0 0 0\n")
	})

	It("should write records in sweep order", func() {
		out := new(bytes.Buffer)
		errOut := new(bytes.Buffer)

		err := runBatch(out, errOut, path, opts)

		Expect(err).NotTo(HaveOccurred())

		var records []map[string]any
		Expect(json.Unmarshal(out.Bytes(), &records)).To(Succeed())
		Expect(records).To(HaveLen(3))
		Expect(records[0]["n_ways"]).To(BeEquivalentTo(1))
		Expect(records[1]["n_ways"]).To(BeEquivalentTo(4))
		Expect(records[2]["n_sets"]).To(BeEquivalentTo(6))
		Expect(records[0]["trace_file"]).To(Equal(path))
		Expect(errOut.String()).To(ContainSubstring("Skipping 6 blocks with 4 ways"))
	})

	It("should write records to a file", func() {
		opts.output = filepath.Join(GinkgoT().TempDir(), "out.json")

		err := runBatch(new(bytes.Buffer), new(bytes.Buffer), path, opts)

		Expect(err).NotTo(HaveOccurred())

		content, err := os.ReadFile(opts.output)
		Expect(err).NotTo(HaveOccurred())

		var records []batch.Record
		Expect(json.Unmarshal(content, &records)).To(Succeed())
		Expect(records).To(HaveLen(3))
	})

	It("should fail when the output file cannot be created", func() {
		opts.output = filepath.Join(GinkgoT().TempDir(), "missing", "out.json")

		err := runBatch(new(bytes.Buffer), new(bytes.Buffer), path, opts)

		Expect(err).To(HaveOccurred())
	})

	It("should record results in a database", func() {
		opts.db = filepath.Join(GinkgoT().TempDir(), "results")

		err := runBatch(new(bytes.Buffer), new(bytes.Buffer), path, opts)

		Expect(err).NotTo(HaveOccurred())
		Expect(opts.db + ".sqlite3").To(BeAnExistingFile())
	})

	It("should fail on a missing trace", func() {
		err := runBatch(new(bytes.Buffer), new(bytes.Buffer),
			filepath.Join(GinkgoT().TempDir(), "none"), opts)

		Expect(err).To(HaveOccurred())
	})

	It("should parse flags", func() {
		Expect(batchCmd.Flags().Parse([]string{
			"--blocks", "8,16", "--ways", "2", "--write", "1",
			"--replacement", "access-count", "--bit-field",
		})).To(Succeed())

		opts, err := batchOptionsFromFlags(batchCmd)

		Expect(err).NotTo(HaveOccurred())
		Expect(opts.sweep.BlockCounts).To(Equal([]int{8, 16}))
		Expect(opts.sweep.Ways).To(Equal([]int{2}))
		Expect(opts.sweep.WritePolicy).To(Equal(cache.WriteThrough))
		Expect(opts.sweep.Replacement).To(Equal(cache.AccessCountReplacement))
		Expect(opts.sweep.Decoding).To(Equal(cache.BitFieldDecoding))
		Expect(opts.sweep.BlockSizeBytes).To(Equal(64))
	})
})

var _ = Describe("Environment", func() {
	It("should fill flags that are not given", func() {
		GinkgoT().Setenv("CACHESIM_PARALLEL", "3")
		GinkgoT().Setenv("CACHESIM_DB", "from_env")

		cmd := &cobra.Command{}
		cmd.Flags().Int("parallel", 1, "")
		cmd.Flags().String("db", "", "")
		Expect(cmd.Flags().Parse([]string{"--db", "from_flag"})).To(Succeed())

		Expect(applyEnv(cmd)).To(Succeed())

		parallel, _ := cmd.Flags().GetInt("parallel")
		db, _ := cmd.Flags().GetString("db")
		Expect(parallel).To(Equal(3))
		Expect(db).To(Equal("from_flag"))
	})

	It("should reject malformed values", func() {
		GinkgoT().Setenv("CACHESIM_PARALLEL", "many")

		cmd := &cobra.Command{}
		cmd.Flags().Int("parallel", 1, "")

		Expect(applyEnv(cmd)).NotTo(Succeed())
	})
})
