package main

import (
	"fmt"
	"log/slog"

	"github.com/devblac/airdrop-radar/internal/cache"
	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/config"
	"github.com/devblac/airdrop-radar/internal/metrics"
	"github.com/devblac/airdrop-radar/internal/rpc/evm"
	"github.com/devblac/airdrop-radar/internal/rpc/solana"
	"github.com/devblac/airdrop-radar/internal/scan"
	"github.com/devblac/airdrop-radar/internal/scoring"
)

// app holds the wired service graph shared by the run and scan commands.
type app struct {
	cfg         *config.Config
	log         *slog.Logger
	catalog     *catalog.DB
	store       *cache.Store
	evmClient   *evm.Client
	solClient   *solana.Client
	helius      *solana.HeliusClient
	coordinator *scan.Coordinator
	engine      *scoring.Engine
	mtr         *metrics.Metrics
}

// buildApp loads the catalog and wires clients, cache, and coordinator from
// config. withCache controls whether the SQLite result cache is opened (the
// one-shot scan command skips it).
func buildApp(cfg *config.Config, log *slog.Logger, mtr *metrics.Metrics, withCache bool) (*app, error) {
	db := catalog.NewDB(log)
	if err := db.Load(cfg.Catalog.Dir); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		catalog: db,
		engine:  scoring.NewEngine(),
		mtr:     mtr,
	}

	if withCache && cfg.Cache.DBPath != "" {
		store, err := cache.Open(cfg.Cache.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		a.store = store
	}

	if cfg.EVM.RPCURL != "" {
		cli, err := evm.Dial(cfg.EVM.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("dial evm rpc: %w", err)
		}
		a.evmClient = cli
	}

	if cfg.ChainSupported("solana") {
		a.solClient = solana.NewClient(cfg.Solana.RPCURL)
		a.helius = solana.NewHeliusClient(cfg.Solana.HeliusAPIKey, cfg.Solana.HeliusBaseURL)
	}

	var evmIface scan.EVMClient
	var windows *scan.WindowResolver
	var registry *scan.Registry
	if a.evmClient != nil {
		evmIface = a.evmClient
		windows = scan.NewWindowResolver(a.evmClient, cfg.EVM.BlockTimeSeconds, cfg.Scan.MaxScanBlockRange, nil)
		registry = scan.NewRegistry(a.evmClient, uint64(cfg.Scan.MaxLogBlockRange), log, mtr)
	}

	var solIface, sigsIface scan.SolanaClient
	var heliusIface scan.HeliusParser
	if a.solClient != nil {
		solIface = a.solClient
		sigsIface = a.solClient
		if a.helius.Available() {
			// Signature listing goes through the keyed Helius RPC endpoint;
			// the public client stays as the raw parse fallback.
			sigsIface = a.helius.RPC()
			heliusIface = a.helius
		}
	}

	a.coordinator = scan.NewCoordinator(cfg.Scan, evmIface, windows, registry, solIface, sigsIface, heliusIface, log, mtr)
	return a, nil
}

// Close releases the app's long-lived resources.
func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.evmClient != nil {
		a.evmClient.Close()
	}
}
