package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jgoulah/gridserve/internal/database"
	"github.com/jgoulah/gridserve/internal/timeseries"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.csv> <output.db>",
	Short: "Convert a CSV data file into a SQLite data file",
	Long: `Loads a CSV data file with the same rules the server uses and writes every reading, in
timestamp order, into a new SQLite file that "serve --data" accepts. Refuses to overwrite.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]

	if _, err := os.Stat(out); err == nil {
		return fmt.Errorf("%s already exists", out)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", out, err)
	}

	store, err := timeseries.Load(in)
	if err != nil {
		return err
	}

	db, err := database.New(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer db.Close()

	ctx := cmd.Context()
	readings := store.Query(timeseries.Range{}).Readings
	if err := db.InsertReadings(ctx, readings); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	n, err := db.Count(ctx)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", out, err)
	}
	if n != len(readings) {
		return fmt.Errorf("verifying %s: wrote %d readings but found %d", out, len(readings), n)
	}

	size := ""
	if fi, err := os.Stat(out); err == nil {
		size = fmt.Sprintf(" (%s)", humanize.Bytes(uint64(fi.Size())))
	}
	fmt.Printf("Wrote %s readings to %s%s\n", humanize.Comma(int64(n)), out, size)
	return nil
}
