package scan

import (
	"context"

	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/rpc/solana"
)

// SolanaClient is the subset of the Solana RPC client the scan engine uses.
type SolanaClient interface {
	GetSignaturesForAddress(ctx context.Context, address string, limit int, before string) ([]solana.SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*solana.ParsedTransaction, error)
}

// HeliusParser is the enhanced batch-parse API.
type HeliusParser interface {
	Available() bool
	ParseTransactions(ctx context.Context, signatures []string) ([]solana.ParsedTransaction, error)
}

// scanSolana has no block window: it fetches the wallet's signatures once,
// parses them once, and reuses the parsed batch for every protocol. Only the
// wall-clock budget applies per protocol.
func (c *Coordinator) scanSolana(ctx context.Context, addr, chain string, protocols []catalog.Protocol) Outcome {
	budget := NewBudget(c.cfg.MaxSeconds, 0, c.nowFunc)

	sigInfos, err := c.sigs.GetSignaturesForAddress(ctx, addr, c.cfg.MaxSolanaSignatures, "")
	if err != nil {
		c.log.Error("signature fetch failed", "address", addr, "error", err)
		return Outcome{Completeness: CompletenessError, SkippedIDs: protocolIDs(protocols)}
	}

	var sigIDs []string
	for _, s := range sigInfos {
		if s.Signature != "" {
			sigIDs = append(sigIDs, s.Signature)
		}
	}

	out := Outcome{Completeness: CompletenessFull}

	if len(sigIDs) == 0 {
		c.log.Info("no signatures found", "address", addr)
		for _, p := range protocols {
			empty := DetectionResult{}
			if p.HasToken {
				out.Tokened = append(out.Tokened, buildTokenedSignal(p, empty))
			} else {
				out.Tokenless = append(out.Tokenless, buildTokenlessSignal(p, empty))
			}
		}
		return out
	}

	parsed, failures := c.parseTransactions(ctx, sigIDs)
	c.log.Info("parsed transactions", "parsed", len(parsed), "failures", failures)
	if failures > 0 && failures*2 >= len(sigIDs) {
		out.Completeness = CompletenessPartial
	}

	matcher := ProgramIDMatcher{}

	for i, p := range protocols {
		if budget.TimeExceeded() {
			c.log.Warn("wall-clock budget exceeded", "elapsed", budget.Elapsed(), "protocol", p.ID)
			out.Completeness = CompletenessPartial
			out.SkippedIDs = protocolIDs(protocols[i:])
			break
		}

		result := DetectionResult{}
		for _, contract := range p.Contracts {
			Merge(&result, matcher.DetectFromParsed(contract, parsed))
		}

		if p.HasToken {
			out.Tokened = append(out.Tokened, buildTokenedSignal(p, result))
		} else {
			out.Tokenless = append(out.Tokenless, buildTokenlessSignal(p, result))
		}
	}

	// Solana markers are Unix timestamps; convert inline, per signal.
	for i := range out.Tokenless {
		if out.Tokenless[i].FirstSeen != "" {
			out.Tokenless[i].FirstSeen = unixToDate(out.Tokenless[i].FirstSeen)
		}
		if out.Tokenless[i].LastSeen != "" {
			out.Tokenless[i].LastSeen = unixToDate(out.Tokenless[i].LastSeen)
		}
	}

	c.mtr.ScanCompleted(chain, string(out.Completeness))
	return out
}

// parseTransactions prefers the Helius enhanced batch parser, chunked at the
// configured batch size. If the enhanced parse is unavailable or fails, it
// falls back to raw per-signature fetches (capped at one batch) and reports
// how many signatures could not be resolved.
func (c *Coordinator) parseTransactions(ctx context.Context, sigIDs []string) ([]solana.ParsedTransaction, int) {
	batchSize := c.cfg.MaxSolanaParseBatch

	if c.helius != nil && c.helius.Available() {
		var all []solana.ParsedTransaction
		enhanced := true
		for i := 0; i < len(sigIDs); i += batchSize {
			end := i + batchSize
			if end > len(sigIDs) {
				end = len(sigIDs)
			}
			parsed, err := c.helius.ParseTransactions(ctx, sigIDs[i:end])
			if err != nil {
				c.log.Warn("enhanced parse failed, falling back to raw RPC", "error", err)
				enhanced = false
				break
			}
			all = append(all, parsed...)
		}
		if enhanced {
			return all, 0
		}
	}

	limit := len(sigIDs)
	if limit > batchSize {
		limit = batchSize
	}
	var parsed []solana.ParsedTransaction
	failures := 0
	for _, sig := range sigIDs[:limit] {
		tx, err := c.sol.GetTransaction(ctx, sig)
		if err != nil {
			failures++
			c.log.Warn("raw transaction fetch failed", "signature", sig, "error", err)
			continue
		}
		if tx != nil {
			parsed = append(parsed, *tx)
		}
	}
	return parsed, failures
}
