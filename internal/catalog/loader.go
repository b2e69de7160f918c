package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DB is the in-memory protocol catalog, keyed by id and grouped by chain.
// Catalog order within a chain is the sorted file order, which the scan
// coordinator relies on for deterministic truncation.
type DB struct {
	log       *slog.Logger
	protocols map[string]Protocol
	byChain   map[string][]Protocol
}

// NewDB builds an empty catalog.
func NewDB(log *slog.Logger) *DB {
	return &DB{
		log:       log,
		protocols: map[string]Protocol{},
		byChain:   map[string][]Protocol{},
	}
}

// Load replaces the catalog with the contents of dir. Layout is one
// subdirectory per chain, one JSON file per protocol. Files that fail to
// parse are logged and skipped, never fatal.
func (d *DB) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read catalog dir: %w", err)
	}

	protocols := map[string]Protocol{}
	byChain := map[string][]Protocol{}

	for _, chainDir := range entries {
		if !chainDir.IsDir() || strings.HasPrefix(chainDir.Name(), ".") {
			continue
		}
		chain := chainDir.Name()
		byChain[chain] = []Protocol{}

		files, err := filepath.Glob(filepath.Join(dir, chain, "*.json"))
		if err != nil {
			return fmt.Errorf("glob %s: %w", chain, err)
		}
		sort.Strings(files)

		for _, file := range files {
			raw, err := os.ReadFile(file)
			if err != nil {
				d.log.Error("read protocol file", "file", file, "error", err)
				continue
			}
			var p Protocol
			if err := json.Unmarshal(raw, &p); err != nil {
				d.log.Error("parse protocol file", "file", file, "error", err)
				continue
			}
			if err := validate(p); err != nil {
				d.log.Error("invalid protocol", "file", file, "error", err)
				continue
			}
			protocols[p.ID] = p
			byChain[chain] = append(byChain[chain], p)
		}
	}

	d.protocols = protocols
	d.byChain = byChain

	chains := make([]string, 0, len(byChain))
	for c := range byChain {
		chains = append(chains, c)
	}
	sort.Strings(chains)
	d.log.Info("catalog loaded", "protocols", len(protocols), "chains", strings.Join(chains, ","))
	return nil
}

func validate(p Protocol) error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.ProtocolWeight <= 0 {
		return fmt.Errorf("protocol_weight must be > 0, got %v", p.ProtocolWeight)
	}
	for i, c := range p.Contracts {
		if c.Address == "" {
			return fmt.Errorf("contract %d: address is required", i)
		}
		switch c.DetectionMode {
		case ModeEventTopic, ModeTransferToContract, ModeTxToContract, ModeProgramIDMatch, ModeHybrid:
		default:
			return fmt.Errorf("contract %d: unsupported detection_mode %q", i, c.DetectionMode)
		}
	}
	return nil
}

// Get returns a protocol by id.
func (d *DB) Get(id string) (Protocol, bool) {
	p, ok := d.protocols[id]
	return p, ok
}

// ByChain returns the protocols for a chain in catalog order.
func (d *DB) ByChain(chain string) []Protocol {
	return d.byChain[chain]
}

// Tokenless returns the chain's protocols without an issued token.
func (d *DB) Tokenless(chain string) []Protocol {
	var out []Protocol
	for _, p := range d.byChain[chain] {
		if !p.HasToken {
			out = append(out, p)
		}
	}
	return out
}

// Tokened returns the chain's protocols that already have a token.
func (d *DB) Tokened(chain string) []Protocol {
	var out []Protocol
	for _, p := range d.byChain[chain] {
		if p.HasToken {
			out = append(out, p)
		}
	}
	return out
}

// Count reports the number of loaded protocols.
func (d *DB) Count() int {
	return len(d.protocols)
}
