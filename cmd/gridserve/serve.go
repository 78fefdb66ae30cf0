package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jgoulah/gridserve/internal/gateway"
	"github.com/jgoulah/gridserve/internal/isotime"
	"github.com/jgoulah/gridserve/internal/service"
	"github.com/jgoulah/gridserve/internal/timeseries"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveData   string
	serveListen string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the consumption RPC server",
	Long: `Loads the data file (CSV or SQLite) into memory and serves ConsumptionService over gRPC.
The process exits without listening if the data file cannot be loaded.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveData, "data", "", "data file to serve (default from config, ./meterusage.csv)")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "RPC listen address (default from config, :50051)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	path := serveData
	if path == "" {
		path = cfg.GetDataPath()
	}
	listen := serveListen
	if listen == "" {
		listen = cfg.GetRPCListen()
	}

	started := time.Now()
	store, err := timeseries.Load(path)
	if err != nil {
		log.WithError(err).Error("Failed to load consumption data")
		return err
	}

	fields := logrus.Fields{
		"path":    path,
		"records": humanize.Comma(int64(store.Len())),
		"took":    time.Since(started).Round(time.Millisecond),
	}
	if fi, err := os.Stat(path); err == nil {
		fields["size"] = humanize.Bytes(uint64(fi.Size()))
	}
	if first, last, ok := store.Span(); ok {
		fields["first"] = isotime.Format(first)
		fields["last"] = isotime.Format(last)
	}
	log.WithFields(fields).Info("Loaded consumption data")

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", listen, err)
	}

	var mlis net.Listener
	if cfg.RPC.MetricsListen != "" {
		mlis, err = net.Listen("tcp", cfg.RPC.MetricsListen)
		if err != nil {
			lis.Close()
			return fmt.Errorf("listening on %s: %w", cfg.RPC.MetricsListen, err)
		}
	}

	reg := newRegistry()
	srv := service.NewServer(service.New(store, log), log, service.Options{Registerer: reg})

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return srv.Serve(ctx, lis)
	})
	if mlis != nil {
		metricsLog := log.WithField("component", "metrics")
		g.Go(func() error {
			return gateway.Serve(ctx, mlis, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), 30*time.Second, metricsLog)
		})
	}

	return g.Wait()
}
