package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/config"
)

var flagProtocolsChain string

func init() {
	protocolsCmd.Flags().StringVar(&flagProtocolsChain, "chain", "", "Limit to one chain")
}

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "List the loaded protocol catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		db := catalog.NewDB(slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err := db.Load(cfg.Catalog.Dir); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		chains := cfg.SupportedChains
		if flagProtocolsChain != "" {
			chains = []string{flagProtocolsChain}
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHAIN\tID\tNAME\tCATEGORY\tTOKEN\tWEIGHT\tMODE")
		for _, chain := range chains {
			for _, p := range db.ByChain(chain) {
				token := "-"
				if p.HasToken {
					token = p.TokenSymbol
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
					chain, p.ID, p.Name, p.Category, token, p.ProtocolWeight, p.PrimaryMode())
			}
		}
		return w.Flush()
	},
}
