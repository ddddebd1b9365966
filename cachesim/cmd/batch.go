package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/batch"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/simulation"
)

var batchCmd = &cobra.Command{
	Use:   "batch <tracefile>",
	Short: "Run a sweep of cache configurations over a trace.",
	Long: `batch runs every combination of block counts and ways over the ` +
		`same trace and writes one JSON record per configuration. A 1-way ` +
		`configuration is direct-mapped and a configuration with as many ` +
		`ways as blocks is fully associative.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := batchOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		return runBatch(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
	},
}

func init() {
	sweep := batch.DefaultSweep()

	batchCmd.Flags().IntSlice("blocks", sweep.BlockCounts,
		"Block counts to simulate")
	batchCmd.Flags().IntSlice("ways", sweep.Ways, "Ways to simulate")
	batchCmd.Flags().Int("block-size", sweep.BlockSizeBytes,
		"Block size in bytes")
	batchCmd.Flags().Int("address-width", sweep.AddressWidthBits,
		"Address width in bits")
	batchCmd.Flags().Int("write", int(sweep.WritePolicy),
		"Write policy, 1 (write-through) or 2 (write-back)")
	batchCmd.Flags().Bool("bit-field", false,
		"Decode addresses by bit fields instead of modulo arithmetic")
	batchCmd.Flags().String("replacement", "recency",
		"Replacement policy, recency or access-count")
	batchCmd.Flags().Int("parallel", runtime.GOMAXPROCS(0),
		"Number of configurations simulated at the same time")
	batchCmd.Flags().String("output", "",
		"JSON file to write the records to, stdout if empty")
	batchCmd.Flags().String("db", "",
		"SQLite database to record the results in")
	batchCmd.Flags().Bool("monitor", false, "Start the monitoring server")
	batchCmd.Flags().Int("monitor-port", 0,
		"Port of the monitoring server, random if not set")
	batchCmd.Flags().Bool("open-browser", false,
		"Open the monitoring page in the browser")

	rootCmd.AddCommand(batchCmd)
}

type batchOptions struct {
	sweep       batch.Sweep
	parallel    int
	output      string
	db          string
	monitor     bool
	monitorPort int
	openBrowser bool
}

func batchOptionsFromFlags(cmd *cobra.Command) (batchOptions, error) {
	opts := batchOptions{}
	flags := cmd.Flags()

	opts.sweep.BlockCounts, _ = flags.GetIntSlice("blocks")
	opts.sweep.Ways, _ = flags.GetIntSlice("ways")
	opts.sweep.BlockSizeBytes, _ = flags.GetInt("block-size")
	opts.sweep.AddressWidthBits, _ = flags.GetInt("address-width")

	writeCode, _ := flags.GetInt("write")

	writePolicy, err := cache.ParseWritePolicy(writeCode)
	if err != nil {
		return opts, err
	}

	opts.sweep.WritePolicy = writePolicy

	if bitField, _ := flags.GetBool("bit-field"); bitField {
		opts.sweep.Decoding = cache.BitFieldDecoding
	}

	name, _ := flags.GetString("replacement")

	replacement, err := cache.ParseReplacement(name)
	if err != nil {
		return opts, err
	}

	opts.sweep.Replacement = replacement

	opts.parallel, _ = flags.GetInt("parallel")
	opts.output, _ = flags.GetString("output")
	opts.db, _ = flags.GetString("db")
	opts.monitor, _ = flags.GetBool("monitor")
	opts.monitorPort, _ = flags.GetInt("monitor-port")
	opts.openBrowser, _ = flags.GetBool("open-browser")

	if opts.openBrowser && !opts.monitor {
		return opts, errors.New("--open-browser requires --monitor")
	}

	return opts, nil
}

func (o batchOptions) simulationBuilder() simulation.Builder {
	builder := simulation.MakeBuilder()

	if o.db != "" {
		builder = builder.WithOutputFileName(o.db)
	}

	if o.monitor {
		builder = builder.WithMonitoring()

		if o.monitorPort > 0 {
			builder = builder.WithMonitorPort(o.monitorPort)
		}

		if o.openBrowser {
			builder = builder.WithBrowser()
		}
	}

	return builder
}

func runBatch(
	out, errOut io.Writer,
	tracePath string,
	opts batchOptions,
) (err error) {
	refs, err := trace.LoadFile(tracePath)
	if err != nil {
		return err
	}

	s, err := opts.simulationBuilder().Build()
	if err != nil {
		return err
	}

	defer func() {
		if terr := s.Terminate(); err == nil {
			err = terr
		}
	}()

	result := s.RunSweep(
		batch.Trace{Name: tracePath, Refs: refs}, opts.sweep, opts.parallel)

	for _, skipped := range result.Skipped {
		fmt.Fprintf(errOut, "Skipping %d blocks with %d ways: %v\n",
			skipped.Config.TotalBlocks, skipped.Config.Associativity,
			skipped.Err)
	}

	return writeRecords(out, opts.output, result.Records)
}

// writeRecords writes the records to the file at path, or to out if path is
// empty.
func writeRecords(out io.Writer, path string, records []batch.Record) error {
	if path == "" {
		return batch.WriteJSON(out, records)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = batch.WriteJSON(f, records)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	return err
}
