package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devblac/airdrop-radar/internal/address"
	"github.com/devblac/airdrop-radar/internal/config"
	"github.com/devblac/airdrop-radar/internal/logging"
	"github.com/devblac/airdrop-radar/internal/scan"
	"github.com/devblac/airdrop-radar/internal/scoring"
)

var (
	flagChain  string
	flagWindow int
)

func init() {
	scanCmd.Flags().StringVar(&flagChain, "chain", "base", "Chain to scan")
	scanCmd.Flags().IntVar(&flagWindow, "window", 0, "Window in days (0 = configured default)")
}

// scanResult is the one-shot CLI output shape.
type scanResult struct {
	Chain        string                 `json:"chain"`
	Address      string                 `json:"address"`
	WindowDays   int                    `json:"window_days"`
	Completeness string                 `json:"completeness"`
	Tokenless    []scan.TokenlessSignal `json:"tokenless_signals"`
	Tokened      []scan.TokenedSignal   `json:"tokened_signals"`
	Summary      scoring.Summary        `json:"summary"`
	NextActions  []scoring.NextAction   `json:"next_actions"`
	SkippedIDs   []string               `json:"skipped_protocols,omitempty"`
	ScannedAt    string                 `json:"scanned_at"`
}

var scanCmd = &cobra.Command{
	Use:   "scan <address>",
	Short: "Run one wallet scan and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log := logging.NewWithLevel(os.Getenv("LOG_LEVEL"))

		chain := flagChain
		if !cfg.ChainSupported(chain) {
			return fmt.Errorf("unsupported chain %q", chain)
		}

		addr := args[0]
		if !address.Validate(addr, chain) {
			return fmt.Errorf("invalid %s address %q", chain, addr)
		}
		addr = address.Normalize(addr, chain)

		windowDays := flagWindow
		if windowDays == 0 {
			windowDays = cfg.Scan.DefaultWindowDays
		}
		if windowDays < cfg.Scan.MinWindowDays {
			windowDays = cfg.Scan.MinWindowDays
		}
		if windowDays > cfg.Scan.MaxWindowDays {
			windowDays = cfg.Scan.MaxWindowDays
		}

		a, err := buildApp(cfg, log, nil, false)
		if err != nil {
			return err
		}
		defer a.Close()

		protocols := a.catalog.ByChain(chain)
		if len(protocols) == 0 {
			return fmt.Errorf("no protocols loaded for chain %q", chain)
		}

		out := a.coordinator.Scan(cmd.Context(), addr, chain, protocols, windowDays)
		a.engine.ScoreSignals(out.Tokenless)

		result := scanResult{
			Chain:        chain,
			Address:      addr,
			WindowDays:   windowDays,
			Completeness: string(out.Completeness),
			Tokenless:    out.Tokenless,
			Tokened:      out.Tokened,
			Summary:      a.engine.BuildSummary(out.Tokenless, out.Tokened),
			NextActions:  a.engine.NextActions(out.Tokenless, out.Tokened, chain),
			SkippedIDs:   out.SkippedIDs,
			ScannedAt:    time.Now().UTC().Format(time.RFC3339),
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}
