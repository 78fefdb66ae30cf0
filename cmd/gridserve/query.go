package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jgoulah/gridserve/internal/gateway"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	queryStart   string
	queryEnd     string
	queryBackend string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query consumption readings from a running RPC server",
	Long:  `Calls GetConsumptionData once and prints the returned readings as a table.`,
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryStart, "start", "", "inclusive start (ISO 8601, e.g. 2024-01-01T00:00:00)")
	queryCmd.Flags().StringVar(&queryEnd, "end", "", "inclusive end (ISO 8601)")
	queryCmd.Flags().StringVar(&queryBackend, "backend", "", "RPC server address (default from config, localhost:50051)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetRequestTimeout())
	defer cancel()

	backend, err := gateway.Dial(ctx, backendAddr(queryBackend, cfg), log)
	if err != nil {
		return err
	}
	defer backend.Close()

	resp, err := backend.GetConsumptionData(ctx, "", queryStart, queryEnd)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
			return fmt.Errorf("invalid query: %s", st.Message())
		}
		return fmt.Errorf("querying %s: %w", backend.Target(), err)
	}

	records := resp.GetRecords()
	if len(records) == 0 {
		fmt.Println("No readings found")
		return nil
	}

	fmt.Println("----------------------------------------")
	fmt.Printf("%-25s  %10s\n", "Datetime", "kWh")
	fmt.Println("----------------------------------------")

	var total float64
	for _, r := range records {
		fmt.Printf("%-25s  %10.2f\n", r.GetDatetime(), r.GetEnergyUsage())
		total += r.GetEnergyUsage()
	}

	fmt.Println("----------------------------------------")
	fmt.Printf("Total: %s kWh (%s records)\n", humanize.FormatFloat("#,###.##", total), humanize.Comma(int64(len(records))))

	return nil
}
