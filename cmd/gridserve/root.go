package main

import (
	"fmt"

	"github.com/jgoulah/gridserve/internal/config"
	"github.com/jgoulah/gridserve/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "gridserve",
	Short: "Serve electricity consumption readings over gRPC and HTTP",
	Long: `GridServe loads a file of timestamped electricity readings into memory and answers
time-range queries over gRPC. A separate gateway process exposes the same data as JSON over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from config and the --log-level flag
func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	level := cfg.GetLogLevel()
	if logLevel != "" {
		level = logLevel
	}
	return logging.New(level, cfg.GetLogFormat())
}

// newRegistry returns a metrics registry with the Go runtime and process collectors
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// backendAddr picks the RPC address from a command flag or config
func backendAddr(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.GetBackend()
}
