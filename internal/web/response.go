package web

import (
	"github.com/devblac/airdrop-radar/internal/scan"
	"github.com/devblac/airdrop-radar/internal/scoring"
)

const disclaimer = "Heuristic exposure estimate based on public onchain activity. " +
	"Not financial advice; airdrop criteria are never guaranteed."

// Skip reasons attached to protocols the scan did not finish.
const (
	skipBudgetExhausted = "budget_exhausted"
	skipScanError       = "scan_error"
)

// SkippedProtocol names one protocol the scan could not cover and why.
type SkippedProtocol struct {
	ProtocolID string `json:"protocol_id"`
	Reason     string `json:"reason"`
}

// SignalsBlock groups the per-protocol evidence by token status.
type SignalsBlock struct {
	Tokenless []scan.TokenlessSignal `json:"tokenless"`
	Tokened   []scan.TokenedSignal   `json:"tokened"`
}

// ScanResponse is the full scan payload. The same shape is stored in the
// result cache and replayed on hits.
type ScanResponse struct {
	Chain            string               `json:"chain"`
	Address          string               `json:"address"`
	WalletType       string               `json:"wallet_type"`
	WindowDays       int                  `json:"window_days"`
	ScanTimestamp    string               `json:"scan_timestamp"`
	Completeness     string               `json:"completeness"`
	Signals          SignalsBlock         `json:"signals"`
	Summary          scoring.Summary      `json:"summary"`
	NextActions      []scoring.NextAction `json:"next_actions"`
	SkippedProtocols []SkippedProtocol    `json:"skipped_protocols,omitempty"`
	Notes            []string             `json:"notes,omitempty"`
	Disclaimer       string               `json:"disclaimer"`
	Cached           bool                 `json:"cached"`
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func skippedFromOutcome(out scan.Outcome) []SkippedProtocol {
	if len(out.SkippedIDs) == 0 {
		return nil
	}
	reason := skipBudgetExhausted
	if out.Completeness == scan.CompletenessError {
		reason = skipScanError
	}
	skipped := make([]SkippedProtocol, 0, len(out.SkippedIDs))
	for _, id := range out.SkippedIDs {
		skipped = append(skipped, SkippedProtocol{ProtocolID: id, Reason: reason})
	}
	return skipped
}

func notesFromOutcome(out scan.Outcome) []string {
	switch out.Completeness {
	case scan.CompletenessPartial:
		return []string{"Scan budget was exhausted before all protocols were checked; results cover a subset of the catalog."}
	case scan.CompletenessError:
		return []string{"The scan window could not be resolved; no protocols were checked."}
	default:
		return nil
	}
}
