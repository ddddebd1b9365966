package cmd

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/mem/cache"
)

func writeTrace(content string) string {
	path := filepath.Join(GinkgoT().TempDir(), "trace.txt")
	Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())

	return path
}

func defaultSingleOptions() singleOptions {
	return singleOptions{
		ways:         2,
		blockSize:    1,
		addressWidth: 32,
		replacement:  cache.LRUReplacement,
	}
}

var _ = Describe("Single run", func() {
	It("should print the summary", func() {
		path := writeTrace("R 0x0 0 0\nR 0x4 04 4\nR 0x0 0 0\n")
		buf := new(bytes.Buffer)

		err := runSingle(buf,
			[]string{"4", "1", "1", path}, defaultSingleOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(Equal(
			"Trace file:      " + path + "\n" +
				"Cache size:      4 blocks (4 bytes)\n" +
				"Mapping:         direct-mapped\n" +
				"Write policy:    write-through\n" +
				"Total cycles:    150\n" +
				"Reads:           3\n" +
				"Writes:          0\n" +
				"Read miss rate:  1.0000\n" +
				"Write miss rate: undefined\n" +
				"Total miss rate: 1.0000\n"))
	})

	It("should use the ways flag for set-associative caches", func() {
		path := writeTrace("R 0x0 0 0\nR 0x4 04 4\nR 0x0 0 0\n")
		buf := new(bytes.Buffer)

		err := runSingle(buf,
			[]string{"4", "3", "2", path}, defaultSingleOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("set-associative"))
		Expect(buf.String()).To(ContainSubstring("Total cycles:    101\n"))
	})

	It("should log accesses", func() {
		path := writeTrace("W 0x8 010 8\n")
		buf := new(bytes.Buffer)
		accessLog := new(bytes.Buffer)

		opts := defaultSingleOptions()
		opts.accessLog = accessLog

		err := runSingle(buf, []string{"4", "2", "2", path}, opts)

		Expect(err).NotTo(HaveOccurred())
		Expect(accessLog.String()).To(Equal("W, 0x8, miss, 1\n"))
	})

	DescribeTable("should reject bad arguments",
		func(args []string) {
			path := writeTrace("R 0x0 0 0\n")
			args = append(args, path)

			err := runSingle(new(bytes.Buffer), args, defaultSingleOptions())

			Expect(err).To(HaveOccurred())
		},
		Entry("non-numeric size", []string{"four", "1", "1"}),
		Entry("unknown mapping", []string{"4", "4", "1"}),
		Entry("unknown write policy", []string{"4", "1", "3"}),
		Entry("ways not dividing blocks", []string{"5", "3", "1"}),
	)

	It("should report malformed traces", func() {
		path := writeTrace("R 0x0 0 0\nX 0x0 0 0\n")

		err := runSingle(new(bytes.Buffer),
			[]string{"4", "1", "1", path}, defaultSingleOptions())

		Expect(err).To(MatchError(ContainSubstring("line 2")))
	})

	It("should print usage for a wrong number of arguments", func() {
		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetArgs([]string{"4", "1"})
		defer rootCmd.SetOut(nil)

		err := rootCmd.Execute()

		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("Usage:"))
	})
})
