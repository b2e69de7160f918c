package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the YAML configuration.
type Config struct {
	Version         int          `yaml:"version"`
	Server          ServerConfig `yaml:"server"`
	Catalog         Catalog      `yaml:"catalog"`
	EVM             EVMConfig    `yaml:"evm"`
	Solana          SolanaConfig `yaml:"solana"`
	Scan            ScanConfig   `yaml:"scan"`
	Cache           CacheConfig  `yaml:"cache"`
	SupportedChains []string     `yaml:"supported_chains"`
	LogLevel        string       `yaml:"log_level"`
}

type ServerConfig struct {
	Listen  string `yaml:"listen"`
	Health  string `yaml:"health"`
	Metrics string `yaml:"metrics"`
}

type Catalog struct {
	Dir string `yaml:"dir"`
}

type EVMConfig struct {
	RPCURL           string `yaml:"rpc_url"`
	BlockTimeSeconds int    `yaml:"block_time_seconds"`
}

type SolanaConfig struct {
	RPCURL        string `yaml:"rpc_url"`
	HeliusAPIKey  string `yaml:"helius_api_key"`
	HeliusBaseURL string `yaml:"helius_base_url"`
}

// ScanConfig bounds a single scan: two independent budgets (wall clock and
// RPC call count), the day-window clamp, and per-call query limits.
type ScanConfig struct {
	MaxRPCCalls         int `yaml:"max_rpc_calls"`
	MaxSeconds          int `yaml:"max_seconds"`
	MaxSolanaSignatures int `yaml:"max_solana_signatures"`
	MaxSolanaParseBatch int `yaml:"max_solana_parse_batch"`
	DefaultWindowDays   int `yaml:"default_window_days"`
	MinWindowDays       int `yaml:"min_window_days"`
	MaxWindowDays       int `yaml:"max_window_days"`
	MaxLogBlockRange    int `yaml:"max_log_block_range"`
	MaxScanBlockRange   int `yaml:"max_scan_block_range"`
}

type CacheConfig struct {
	DBPath string `yaml:"db_path"`
	TTL    string `yaml:"ttl"`
}

// TTLDuration parses the cache TTL, defaulting to one hour.
func (c CacheConfig) TTLDuration() time.Duration {
	if c.TTL == "" {
		return time.Hour
	}
	if d, err := time.ParseDuration(c.TTL); err == nil && d > 0 {
		return d
	}
	return time.Hour
}

var envPattern = regexp.MustCompile(`\${([A-Za-z_][A-Za-z0-9_]*)}`)

// Load reads, interpolates env vars, parses YAML, applies defaults, and validates.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	if err := loadDotEnv(path); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	interpolated, err := interpolateEnv(string(raw))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadDotEnv(configPath string) error {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}
	return nil
}

func interpolateEnv(input string) (string, error) {
	missing := []string{}
	out := envPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("missing environment variables: %s", strings.Join(dedup(missing), ", "))
	}
	return out, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8000"
	}
	if c.EVM.BlockTimeSeconds == 0 {
		c.EVM.BlockTimeSeconds = 2
	}
	if c.Solana.RPCURL == "" {
		c.Solana.RPCURL = "https://api.mainnet-beta.solana.com"
	}
	if c.Solana.HeliusBaseURL == "" {
		c.Solana.HeliusBaseURL = "https://api.helius.xyz"
	}
	if c.Scan.MaxRPCCalls == 0 {
		c.Scan.MaxRPCCalls = 150
	}
	if c.Scan.MaxSeconds == 0 {
		c.Scan.MaxSeconds = 15
	}
	if c.Scan.MaxSolanaSignatures == 0 {
		c.Scan.MaxSolanaSignatures = 1000
	}
	if c.Scan.MaxSolanaParseBatch == 0 {
		c.Scan.MaxSolanaParseBatch = 100
	}
	if c.Scan.DefaultWindowDays == 0 {
		c.Scan.DefaultWindowDays = 90
	}
	if c.Scan.MinWindowDays == 0 {
		c.Scan.MinWindowDays = 30
	}
	if c.Scan.MaxWindowDays == 0 {
		c.Scan.MaxWindowDays = 180
	}
	if c.Scan.MaxLogBlockRange == 0 {
		c.Scan.MaxLogBlockRange = 2000
	}
	if len(c.SupportedChains) == 0 {
		c.SupportedChains = []string{"base", "solana"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate performs small, direct schema checks.
func (c *Config) Validate() error {
	if c.Version == 0 {
		return errors.New("version is required")
	}
	if c.Catalog.Dir == "" {
		return errors.New("catalog.dir is required")
	}
	if c.Cache.DBPath == "" {
		return errors.New("cache.db_path is required")
	}
	if c.Scan.MinWindowDays > c.Scan.MaxWindowDays {
		return fmt.Errorf("scan window bounds inverted: min %d > max %d", c.Scan.MinWindowDays, c.Scan.MaxWindowDays)
	}
	if c.Scan.DefaultWindowDays < c.Scan.MinWindowDays || c.Scan.DefaultWindowDays > c.Scan.MaxWindowDays {
		return fmt.Errorf("scan.default_window_days %d outside [%d, %d]", c.Scan.DefaultWindowDays, c.Scan.MinWindowDays, c.Scan.MaxWindowDays)
	}

	seen := map[string]struct{}{}
	for _, chain := range c.SupportedChains {
		if _, dup := seen[chain]; dup {
			return fmt.Errorf("duplicate supported chain: %s", chain)
		}
		seen[chain] = struct{}{}
		if chain != "solana" && c.EVM.RPCURL == "" {
			return fmt.Errorf("evm.rpc_url is required for chain %s", chain)
		}
	}

	return nil
}

// ChainSupported reports whether a chain is enabled in this deployment.
func (c *Config) ChainSupported(chain string) bool {
	for _, s := range c.SupportedChains {
		if s == chain {
			return true
		}
	}
	return false
}

func dedup(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
