package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/batch"
	"github.com/sarchlab/cachesim/datarecording"
)

var reportCmd = &cobra.Command{
	Use:   "report <db>",
	Short: "Print the batch results stored in a database.",
	Long: `report reads the records that batch stored with --db and writes ` +
		`them as JSON in sweep order. The database path includes the ` +
		`.sqlite3 extension.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sweepID, _ := cmd.Flags().GetString("sweep")
		output, _ := cmd.Flags().GetString("output")

		return runReport(cmd.Context(), cmd.OutOrStdout(), args[0],
			sweepID, output)
	},
}

func init() {
	reportCmd.Flags().String("sweep", "",
		"Only report the sweep with this ID")
	reportCmd.Flags().String("output", "",
		"JSON file to write the records to, stdout if empty")

	rootCmd.AddCommand(reportCmd)
}

func runReport(
	ctx context.Context,
	out io.Writer,
	dbPath, sweepID, output string,
) (err error) {
	// Opening a missing file would create an empty database.
	if _, err = os.Stat(dbPath); err != nil {
		return err
	}

	reader, err := datarecording.NewReader(dbPath)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := reader.Close(); err == nil {
			err = cerr
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	records, err := batch.ReadRecords(ctx, reader, sweepID)
	if err != nil {
		return err
	}

	return writeRecords(out, output, records)
}
