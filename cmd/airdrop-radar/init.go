package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const sampleConfig = `version: 1

server:
  listen: ":8080"
  health: ":8081"
  metrics: ""

catalog:
  dir: "data/protocols"

evm:
  rpc_url: "${BASE_RPC_URL}"
  block_time_seconds: 2

solana:
  rpc_url: "https://api.mainnet-beta.solana.com"
  helius_api_key: "${HELIUS_API_KEY}"

scan:
  max_rpc_calls: 150
  max_seconds: 15
  max_solana_signatures: 1000
  max_solana_parse_batch: 100
  default_window_days: 90
  min_window_days: 30
  max_window_days: 180
  max_log_block_range: 2000

cache:
  db_path: "airdrop-radar.db"
  ttl: "1h"

supported_chains: ["base", "solana"]
log_level: "info"
`

const sampleProtocol = `{
  "id": "example-dex",
  "name": "Example DEX",
  "chain": "base",
  "category": "dex",
  "has_token": false,
  "protocol_weight": 1.0,
  "contracts": [
    {
      "address": "0x0000000000000000000000000000000000000001",
      "label": "router",
      "type": "router",
      "detection_mode": "tx_to_contract",
      "detection_config": {}
    }
  ]
}
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a sample config and protocol catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		files := map[string]string{
			cfgPath: sampleConfig,
			filepath.Join("data", "protocols", "base", "01_example.json"): sampleProtocol,
		}

		for path, content := range files {
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(out, "skip %s (exists)\n", path)
				continue
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(out, "wrote %s\n", path)
		}

		fmt.Fprintln(out, "init: done. Set BASE_RPC_URL (and optionally HELIUS_API_KEY), then run `airdrop-radar validate`.")
		return nil
	},
}
