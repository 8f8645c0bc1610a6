package main

import (
	"fmt"
	"log/slog"
	"net"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/finsight/internal/analysis"
	"github.com/Veraticus/finsight/internal/api"
	"github.com/Veraticus/finsight/internal/cache"
	"github.com/Veraticus/finsight/internal/certs"
	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/config"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the analysis engine over HTTP.

Endpoints:
  GET  /health                  liveness and storage check
  GET  /metrics                 Prometheus metrics
  POST /api/v1/analyze          analyze posted monthly transactions
  GET  /api/v1/analysis/:year   analyze a stored year
  POST /api/v1/categorize       categorize one description

With --tls a self-signed certificate for localhost is created in
server.cert_dir and reused on later runs.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("address", "", "Listen address (default: 127.0.0.1:8080)")
	cmd.Flags().Bool("no-storage", false, "Serve without the database")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed certificate")

	_ = viper.BindPFlag(config.KeyServerAddress, cmd.Flags().Lookup("address"))
	_ = viper.BindPFlag(config.KeyServerTLS, cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	noStorage, _ := cmd.Flags().GetBool("no-storage")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	categorizer := classification.NewDefaultCategorizer()
	engine, err := analysis.NewEngine(analysis.Deps{
		Categorizer: categorizer,
		Clock:       time.Now,
		Logger:      slog.Default().With("component", "analysis"),
	})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	reportCache := cache.New(cfg.Cache.TTL)
	defer reportCache.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := api.Deps{
		Engine:      engine,
		Categorizer: categorizer,
		Cache:       reportCache,
		Metrics:     api.NewMetrics(registry),
		Gatherer:    registry,
		Logger:      slog.Default().With("component", "api"),
		Clock:       time.Now,
	}

	if !noStorage {
		store, err := initStorage(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer closeStorage(store)
		deps.Storage = store
	}

	opts := api.Options{
		Address:   cfg.Server.Address,
		RateLimit: cfg.Server.RateLimit,
		Burst:     cfg.Server.Burst,
	}
	if cfg.Server.TLS {
		certFile, keyFile, err := certs.NewManager(cfg.Server.CertDir, tlsHosts(cfg.Server.Address)...).Ensure()
		if err != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}
		opts.TLSCertFile = certFile
		opts.TLSKeyFile = keyFile
	}

	server, err := api.NewServer(deps, opts)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return server.Run(ctx)
}

// tlsHosts returns the default local names plus the host of the listen
// address when it is a specific name or IP.
func tlsHosts(address string) []string {
	hosts := append([]string(nil), certs.DefaultHosts...)

	host, _, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return hosts
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		return hosts
	}
	if slices.Contains(hosts, host) {
		return hosts
	}
	return append(hosts, host)
}
