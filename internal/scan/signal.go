package scan

import (
	"fmt"
	"strconv"
	"time"

	"github.com/devblac/airdrop-radar/internal/catalog"
)

// TokenlessSignal is the scored evidence for a protocol with no issued token.
// These drive the airdrop-likelihood score.
type TokenlessSignal struct {
	ProtocolID       string   `json:"protocol_id"`
	ProtocolName     string   `json:"protocol_name"`
	Category         string   `json:"category"`
	ProtocolWeight   float64  `json:"protocol_weight"`
	Interacted       bool     `json:"interacted"`
	FirstSeen        string   `json:"first_seen,omitempty"`
	LastSeen         string   `json:"last_seen,omitempty"`
	InteractionCount int      `json:"interaction_count"`
	SignalTypes      []string `json:"signal_types"`
	SignalStrength   string   `json:"signal_strength"`
	DetectionMode    string   `json:"detection_mode"`
}

// TokenedSignal is context-only evidence for a protocol that already has a
// token. Scanned for completeness, never scored.
type TokenedSignal struct {
	ProtocolID   string `json:"protocol_id"`
	ProtocolName string `json:"protocol_name"`
	Category     string `json:"category"`
	TokenSymbol  string `json:"token_symbol"`
	Interacted   bool   `json:"interacted"`
	Note         string `json:"note,omitempty"`
}

// buildTokenlessSignal converts an accumulator into a signal. This is the
// single point where signal types are deduplicated.
func buildTokenlessSignal(p catalog.Protocol, r DetectionResult) TokenlessSignal {
	return TokenlessSignal{
		ProtocolID:       p.ID,
		ProtocolName:     p.Name,
		Category:         p.Category,
		ProtocolWeight:   p.ProtocolWeight,
		Interacted:       r.Interacted,
		FirstSeen:        r.FirstSeen,
		LastSeen:         r.LastSeen,
		InteractionCount: r.InteractionCount,
		SignalTypes:      dedupTypes(r.SignalTypes),
		SignalStrength:   "none", // scored later
		DetectionMode:    p.PrimaryMode(),
	}
}

func buildTokenedSignal(p catalog.Protocol, r DetectionResult) TokenedSignal {
	note := ""
	if r.Interacted && p.TokenSymbol != "" {
		note = fmt.Sprintf("Already has token ($%s), included for completeness", p.TokenSymbol)
	}
	return TokenedSignal{
		ProtocolID:   p.ID,
		ProtocolName: p.Name,
		Category:     p.Category,
		TokenSymbol:  p.TokenSymbol,
		Interacted:   r.Interacted,
		Note:         note,
	}
}

// blockToDate rewrites a block-number marker to an ISO date using the batch
// timestamp lookup; unknown blocks clear the marker.
func blockToDate(marker string, timestamps map[uint64]uint64) string {
	bn, err := strconv.ParseUint(marker, 10, 64)
	if err != nil {
		return ""
	}
	ts, ok := timestamps[bn]
	if !ok || ts == 0 {
		return ""
	}
	return time.Unix(int64(ts), 0).UTC().Format("2006-01-02")
}

// unixToDate rewrites a Unix-timestamp marker to an ISO date.
func unixToDate(marker string) string {
	ts, err := strconv.ParseInt(marker, 10, 64)
	if err != nil {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}
