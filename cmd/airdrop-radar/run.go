package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devblac/airdrop-radar/internal/config"
	"github.com/devblac/airdrop-radar/internal/health"
	"github.com/devblac/airdrop-radar/internal/logging"
	"github.com/devblac/airdrop-radar/internal/metrics"
	"github.com/devblac/airdrop-radar/internal/web"
)

var (
	flagListen  string
	flagHealth  string
	flagMetrics string
)

func init() {
	runCmd.Flags().StringVar(&flagListen, "listen", "", "API listen address override (e.g., :8080)")
	runCmd.Flags().StringVar(&flagHealth, "health", "", "Health check HTTP address override (e.g., :8081)")
	runCmd.Flags().StringVar(&flagMetrics, "metrics", "", "Metrics HTTP address override (e.g., :9090)")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the airdrop-exposure API service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logLevel := os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			logLevel = cfg.LogLevel
		}
		log := logging.NewWithLevel(logLevel)

		if flagListen != "" {
			cfg.Server.Listen = flagListen
		}
		if flagHealth != "" {
			cfg.Server.Health = flagHealth
		}
		if flagMetrics != "" {
			cfg.Server.Metrics = flagMetrics
		}

		var mtr *metrics.Metrics
		if cfg.Server.Metrics != "" {
			mtr = metrics.Init()
			log.Info("metrics enabled", "addr", cfg.Server.Metrics)
		}

		a, err := buildApp(cfg, log, mtr, true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Server.Health != "" {
			var evmPing health.EVMPinger
			if a.evmClient != nil {
				evmPing = a.evmClient
			}
			var solPing health.SolanaPinger
			if a.solClient != nil {
				solPing = a.solClient
			}
			checker := health.Checker{
				RPCPing: health.NewRPCChecker(evmPing, solPing).Ping,
			}
			if a.store != nil {
				checker.CachePing = a.store.Ping
			}
			healthSrv := health.Serve(cfg.Server.Health, checker)
			log.Info("health check enabled", "addr", cfg.Server.Health)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = health.Shutdown(shutdownCtx, healthSrv)
			}()
		}

		if cfg.Server.Metrics != "" {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				srv := &http.Server{Addr: cfg.Server.Metrics, Handler: mux}
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("metrics server error", "error", err)
				}
			}()
		}

		var code web.CodeReader
		if a.evmClient != nil {
			code = a.evmClient
		}
		var accounts web.AccountReader
		if a.solClient != nil {
			accounts = a.solClient
		}
		var resultCache web.ResultCache
		if a.store != nil {
			resultCache = a.store
		}

		server := web.NewServer(cfg, a.catalog, a.coordinator, a.engine, resultCache, code, accounts, log, mtr)
		if err := server.Run(ctx); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	},
}
