package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jgoulah/gridserve/internal/gateway"
	"github.com/jgoulah/gridserve/internal/publisher"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	publishStart   string
	publishEnd     string
	publishLimit   int
	publishBackend string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish consumption readings to MQTT",
	Long:  `Queries the RPC server once and publishes each returned reading as JSON to <topic_prefix>/consumption.`,
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishStart, "start", "", "inclusive start (ISO 8601)")
	publishCmd.Flags().StringVar(&publishEnd, "end", "", "inclusive end (ISO 8601)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of records to publish (0 = no limit)")
	publishCmd.Flags().StringVar(&publishBackend, "backend", "", "RPC server address (default from config, localhost:50051)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.MQTT.Enabled {
		return fmt.Errorf("MQTT is not enabled in config")
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetRequestTimeout())
	defer cancel()

	backend, err := gateway.Dial(ctx, backendAddr(publishBackend, cfg), log)
	if err != nil {
		return err
	}
	defer backend.Close()

	resp, err := backend.GetConsumptionData(ctx, "", publishStart, publishEnd)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
			return fmt.Errorf("invalid query: %s", st.Message())
		}
		return fmt.Errorf("querying %s: %w", backend.Target(), err)
	}

	records := resp.GetRecords()
	if len(records) == 0 {
		fmt.Println("No readings in range")
		return nil
	}
	if publishLimit > 0 && len(records) > publishLimit {
		records = records[:publishLimit]
		fmt.Printf("Limiting to %d records (--limit flag)\n", publishLimit)
	}

	mqttCfg := cfg.GetMQTT()
	pub, err := publisher.New(mqttCfg)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	fmt.Printf("Publishing %d records to %s...\n", len(records), publisher.Topic(mqttCfg.TopicPrefix))
	published := 0
	for i, r := range records {
		fmt.Printf("[%d/%d] Publishing %s (%.2f kWh)... ", i+1, len(records), r.GetDatetime(), r.GetEnergyUsage())
		if err := pub.Publish(r); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}
		fmt.Printf("✓\n")
		published++
	}

	fmt.Printf("Successfully published %d/%d records\n", published, len(records))
	if published < len(records) {
		return fmt.Errorf("%d records failed to publish", len(records)-published)
	}
	return nil
}
