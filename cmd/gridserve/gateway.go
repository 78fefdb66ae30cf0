package main

import (
	"fmt"
	"net"

	"github.com/jgoulah/gridserve/internal/gateway"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	gatewayListen  string
	gatewayBackend string
	gatewayStatic  string
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the JSON/HTTP gateway in front of the RPC server",
	Long: `Serves /consumption, /api/consumption and /health over HTTP, translating each request into
a call against the RPC server. The gateway waits for the backend to report SERVING at startup,
but keeps serving (with 503 responses) if it never does.`,
	RunE: runGateway,
}

func init() {
	gatewayCmd.Flags().StringVar(&gatewayListen, "listen", "", "HTTP listen address (default from config, :8000)")
	gatewayCmd.Flags().StringVar(&gatewayBackend, "backend", "", "RPC server address (default from config, localhost:50051)")
	gatewayCmd.Flags().StringVar(&gatewayStatic, "static", "", "directory served under /static/ (default from config, disabled)")
	rootCmd.AddCommand(gatewayCmd)
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	listen := gatewayListen
	if listen == "" {
		listen = cfg.GetGatewayListen()
	}
	staticDir := gatewayStatic
	if staticDir == "" {
		staticDir = cfg.Gateway.StaticDir
	}

	ctx := cmd.Context()

	backend, err := gateway.Dial(ctx, backendAddr(gatewayBackend, cfg), log)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.WaitReady(ctx, cfg.GetReadyTimeout(), cfg.GetHealthTimeout()); err != nil {
		log.WithError(err).Warn("Backend is not serving yet; requests will fail until it is")
	}

	accessLog := log.WriterLevel(logrus.InfoLevel)
	defer accessLog.Close()

	h := gateway.NewHandler(backend, log, gateway.Options{
		RequestTimeout: cfg.GetRequestTimeout(),
		HealthTimeout:  cfg.GetHealthTimeout(),
		StaticDir:      staticDir,
		Registry:       newRegistry(),
		AccessLog:      accessLog,
	})

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", listen, err)
	}

	// leave room for the RPC timeout plus encoding
	writeTimeout := cfg.GetRequestTimeout() + cfg.GetHealthTimeout()
	return gateway.Serve(ctx, lis, h, writeTimeout, log)
}
