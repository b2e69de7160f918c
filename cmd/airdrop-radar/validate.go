package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/config"
	"github.com/devblac/airdrop-radar/internal/rpc/evm"
	"github.com/devblac/airdrop-radar/internal/rpc/solana"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config, catalog, and RPC connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
		fmt.Fprintf(out, "config OK (version %d)\n", cfg.Version)

		db := catalog.NewDB(slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err := db.Load(cfg.Catalog.Dir); err != nil {
			return fmt.Errorf("catalog invalid: %w", err)
		}
		fmt.Fprintf(out, "catalog OK (%d protocols)\n", db.Count())
		for _, chain := range cfg.SupportedChains {
			fmt.Fprintf(out, "- chain %s: %d protocols (%d tokenless)\n",
				chain, len(db.ByChain(chain)), len(db.Tokenless(chain)))
		}

		failures := 0
		if cfg.EVM.RPCURL != "" {
			cli, err := evm.Dial(cfg.EVM.RPCURL)
			if err != nil {
				failures++
				fmt.Fprintf(out, "- evm rpc: ERROR %v\n", err)
			} else {
				defer cli.Close()
				if latest, err := cli.BlockNumber(cmd.Context()); err != nil {
					failures++
					fmt.Fprintf(out, "- evm rpc: ERROR %v\n", err)
				} else {
					fmt.Fprintf(out, "- evm rpc: block %d OK\n", latest)
				}
			}
		}

		if cfg.ChainSupported("solana") {
			cli := solana.NewClient(cfg.Solana.RPCURL)
			if err := cli.Health(cmd.Context()); err != nil {
				failures++
				fmt.Fprintf(out, "- solana rpc: ERROR %v\n", err)
			} else {
				fmt.Fprintln(out, "- solana rpc: OK")
			}
			if solana.NewHeliusClient(cfg.Solana.HeliusAPIKey, cfg.Solana.HeliusBaseURL).Available() {
				fmt.Fprintln(out, "- helius: api key configured")
			} else {
				fmt.Fprintln(out, "- helius: no api key, using public RPC parse fallback")
			}
		}

		if failures > 0 {
			return fmt.Errorf("validate: %d endpoint(s) failed connectivity", failures)
		}
		fmt.Fprintln(out, "validate: success")
		return nil
	},
}
