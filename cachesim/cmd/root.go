// Package cmd provides the command-line interface of cachesim.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/simulation"
)

// rootCmd runs a single cache configuration over a trace.
var rootCmd = &cobra.Command{
	Use:   "cachesim <blocks> <mapping> <write> <tracefile>",
	Short: "cachesim replays a memory trace through a cache.",
	Long: `cachesim replays a memory trace through a cache and reports the ` +
		`total cycles spent. Mapping is 1 (direct-mapped), 2 ` +
		`(fully-associative), or 3 (set-associative). Write is 1 ` +
		`(write-through) or 2 (write-back).`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnv,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 4 {
			return cmd.Usage()
		}

		opts, err := singleOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		if opts.verbose {
			opts.accessLog = cmd.ErrOrStderr()
		}

		return runSingle(cmd.OutOrStdout(), args, opts)
	},
}

func init() {
	rootCmd.Flags().Int("ways", 2, "Number of ways of a set-associative cache")
	rootCmd.Flags().Int("block-size", 1, "Block size in bytes")
	rootCmd.Flags().Int("address-width", 32, "Address width in bits")
	rootCmd.Flags().Bool("bit-field", false,
		"Decode addresses by bit fields instead of modulo arithmetic")
	rootCmd.Flags().String("replacement", "recency",
		"Replacement policy, recency or access-count")
	rootCmd.Flags().Bool("record", false,
		"Record every access into an SQLite database")
	rootCmd.Flags().Bool("verbose", false, "Print every access to stderr")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

type singleOptions struct {
	ways         int
	blockSize    int
	addressWidth int
	bitField     bool
	replacement  cache.Replacement
	record       bool
	verbose      bool
	accessLog    io.Writer
}

func singleOptionsFromFlags(cmd *cobra.Command) (singleOptions, error) {
	opts := singleOptions{}
	flags := cmd.Flags()

	opts.ways, _ = flags.GetInt("ways")
	opts.blockSize, _ = flags.GetInt("block-size")
	opts.addressWidth, _ = flags.GetInt("address-width")
	opts.bitField, _ = flags.GetBool("bit-field")
	opts.record, _ = flags.GetBool("record")
	opts.verbose, _ = flags.GetBool("verbose")

	name, _ := flags.GetString("replacement")

	replacement, err := cache.ParseReplacement(name)
	if err != nil {
		return opts, err
	}

	opts.replacement = replacement

	return opts, nil
}

func parseCode(arg, what string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}

	return n, nil
}

func buildCache(args []string, opts singleOptions) (*cache.Cache, error) {
	blocks, err := parseCode(args[0], "cache size")
	if err != nil {
		return nil, err
	}

	mappingCode, err := parseCode(args[1], "mapping")
	if err != nil {
		return nil, err
	}

	mapping, err := cache.ParseMapping(mappingCode)
	if err != nil {
		return nil, err
	}

	writeCode, err := parseCode(args[2], "write policy")
	if err != nil {
		return nil, err
	}

	writePolicy, err := cache.ParseWritePolicy(writeCode)
	if err != nil {
		return nil, err
	}

	builder := cache.MakeBuilder().
		WithTotalBlocks(blocks).
		WithMapping(mapping).
		WithWritePolicy(writePolicy).
		WithWays(opts.ways).
		WithBlockSize(opts.blockSize).
		WithAddressWidth(opts.addressWidth).
		WithReplacement(opts.replacement)

	if opts.bitField {
		builder = builder.WithDecoding(cache.BitFieldDecoding)
	}

	return builder.Build()
}

func runSingle(out io.Writer, args []string, opts singleOptions) (err error) {
	c, err := buildCache(args, opts)
	if err != nil {
		return err
	}

	tracePath := args[3]

	f, err := os.Open(tracePath)
	if err != nil {
		return err
	}
	defer f.Close()

	builder := simulation.MakeBuilder()
	if opts.record {
		builder = builder.WithRecording()
	}

	if opts.accessLog != nil {
		builder = builder.WithAccessLog(opts.accessLog)
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}

	defer func() {
		if terr := s.Terminate(); err == nil {
			err = terr
		}
	}()

	stats, err := s.NewSimulator("Cache", c).Run(trace.NewReader(f))
	if err != nil {
		return err
	}

	printSummary(out, tracePath, c.Config(), stats)

	return nil
}

func printSummary(
	out io.Writer,
	tracePath string,
	config cache.Config,
	stats sim.Stats,
) {
	fmt.Fprintf(out, "Trace file:      %s\n", tracePath)
	fmt.Fprintf(out, "Cache size:      %d blocks (%d bytes)\n",
		config.TotalBlocks, config.SizeInBytes())
	fmt.Fprintf(out, "Mapping:         %s\n", config.Mapping)
	fmt.Fprintf(out, "Write policy:    %s\n", config.WritePolicy)
	fmt.Fprintf(out, "Total cycles:    %d\n", stats.Cycles)
	fmt.Fprintf(out, "Reads:           %d\n", stats.Reads)
	fmt.Fprintf(out, "Writes:          %d\n", stats.Writes)
	fmt.Fprintf(out, "Read miss rate:  %s\n", stats.ReadMissRate())
	fmt.Fprintf(out, "Write miss rate: %s\n", stats.WriteMissRate())
	fmt.Fprintf(out, "Total miss rate: %s\n", stats.TotalMissRate())
}
