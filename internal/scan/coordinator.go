package scan

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/config"
	"github.com/devblac/airdrop-radar/internal/metrics"
)

// Completeness describes the outcome quality of one scan.
type Completeness string

const (
	CompletenessFull    Completeness = "full"
	CompletenessPartial Completeness = "partial"
	CompletenessError   Completeness = "error"
)

// Outcome is the result of one scan invocation.
type Outcome struct {
	Tokenless    []TokenlessSignal
	Tokened      []TokenedSignal
	Completeness Completeness
	SkippedIDs   []string
}

// Coordinator runs the budgeted per-protocol loop. Protocols are processed
// strictly in catalog order on a single task so that budget exhaustion
// truncates deterministically: once a limit trips, the current protocol and
// every later one are skipped.
type Coordinator struct {
	cfg      config.ScanConfig
	evm      EVMClient
	windows  *WindowResolver
	registry *Registry
	sol      SolanaClient
	sigs     SolanaClient
	helius   HeliusParser
	log      *slog.Logger
	mtr      *metrics.Metrics
	nowFunc  func() time.Time
}

// NewCoordinator wires a coordinator. sigs is the client used for the initial
// signature fetch (a Helius RPC endpoint when available, sol otherwise); sol
// also serves the raw per-signature parse fallback.
func NewCoordinator(cfg config.ScanConfig, evmClient EVMClient, windows *WindowResolver, registry *Registry, sol, sigs SolanaClient, helius HeliusParser, log *slog.Logger, mtr *metrics.Metrics) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		evm:      evmClient,
		windows:  windows,
		registry: registry,
		sol:      sol,
		sigs:     sigs,
		helius:   helius,
		log:      log,
		mtr:      mtr,
		nowFunc:  time.Now,
	}
}

// Scan runs one full scan of address against protocols (in catalog order).
// windowDays must already be clamped to the configured bounds.
func (c *Coordinator) Scan(ctx context.Context, addr, chain string, protocols []catalog.Protocol, windowDays int) Outcome {
	if chain == "solana" {
		return c.scanSolana(ctx, addr, chain, protocols)
	}
	return c.scanEVM(ctx, addr, chain, protocols, windowDays)
}

func (c *Coordinator) scanEVM(ctx context.Context, addr, chain string, protocols []catalog.Protocol, windowDays int) Outcome {
	budget := NewBudget(c.cfg.MaxSeconds, c.cfg.MaxRPCCalls, c.nowFunc)

	window, err := c.windows.Resolve(ctx, windowDays)
	if err != nil {
		c.log.Error("scan window resolution failed", "chain", chain, "error", err)
		return Outcome{Completeness: CompletenessError, SkippedIDs: protocolIDs(protocols)}
	}
	budget.Charge(window.CallsUsed)

	out := Outcome{Completeness: CompletenessFull}

	for i, p := range protocols {
		if budget.TimeExceeded() {
			c.log.Warn("wall-clock budget exceeded", "elapsed", budget.Elapsed(), "protocol", p.ID)
			out.Completeness = CompletenessPartial
			out.SkippedIDs = protocolIDs(protocols[i:])
			break
		}
		if budget.CallsExhausted() {
			c.log.Warn("rpc budget exceeded", "calls", budget.Used(), "protocol", p.ID)
			out.Completeness = CompletenessPartial
			out.SkippedIDs = protocolIDs(protocols[i:])
			break
		}

		result := c.scanEVMProtocol(ctx, addr, p, window, protocolBudget(budget, p.HasToken))
		budget.Charge(result.RPCCallsUsed)

		if p.HasToken {
			out.Tokened = append(out.Tokened, buildTokenedSignal(p, result))
		} else {
			out.Tokenless = append(out.Tokenless, buildTokenlessSignal(p, result))
		}
	}

	c.resolveBlockDates(ctx, out.Tokenless)

	c.mtr.RPCCalls(chain, budget.Used())
	c.mtr.ScanCompleted(chain, string(out.Completeness))
	c.log.Info("scan complete",
		"chain", chain,
		"rpc_calls", budget.Used(),
		"elapsed", budget.Elapsed(),
		"completeness", out.Completeness,
	)
	return out
}

// scanEVMProtocol merges detection across the protocol's contracts under one
// shared per-protocol call budget.
func (c *Coordinator) scanEVMProtocol(ctx context.Context, addr string, p catalog.Protocol, window Window, rpcBudget int) DetectionResult {
	merged := DetectionResult{}

	for _, contract := range p.Contracts {
		if merged.RPCCallsUsed >= rpcBudget {
			break
		}
		if contract.DetectionMode == catalog.ModeProgramIDMatch {
			continue // Solana-only mode
		}
		detector, ok := c.registry.ForMode(contract.DetectionMode)
		if !ok {
			continue
		}

		result := detector.Detect(ctx, addr, contract, window.FromBlock, window.ToBlock, rpcBudget-merged.RPCCallsUsed)
		merged.RPCCallsUsed += result.RPCCallsUsed
		Merge(&merged, result)
	}

	return merged
}

// resolveBlockDates batch-resolves every first/last-seen block marker to an
// ISO date, deduplicated across signals. Lookups may fan out concurrently
// under the permanent timestamp cache.
func (c *Coordinator) resolveBlockDates(ctx context.Context, signals []TokenlessSignal) {
	var blocks []uint64
	for _, s := range signals {
		for _, marker := range []string{s.FirstSeen, s.LastSeen} {
			if marker == "" {
				continue
			}
			if bn, err := strconv.ParseUint(marker, 10, 64); err == nil {
				blocks = append(blocks, bn)
			}
		}
	}
	if len(blocks) == 0 {
		return
	}

	timestamps := c.evm.BatchTimestamps(ctx, blocks)
	for i := range signals {
		if signals[i].FirstSeen != "" {
			signals[i].FirstSeen = blockToDate(signals[i].FirstSeen, timestamps)
		}
		if signals[i].LastSeen != "" {
			signals[i].LastSeen = blockToDate(signals[i].LastSeen, timestamps)
		}
	}
}

func protocolIDs(protocols []catalog.Protocol) []string {
	ids := make([]string, 0, len(protocols))
	for _, p := range protocols {
		ids = append(ids, p.ID)
	}
	return ids
}
