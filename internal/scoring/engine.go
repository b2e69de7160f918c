package scoring

import (
	"time"

	"github.com/devblac/airdrop-radar/internal/scan"
)

// Strength tiers, weakest to strongest.
const (
	StrengthNone     = "none"
	StrengthWeak     = "weak"
	StrengthModerate = "moderate"
	StrengthStrong   = "strong"
)

// missingDays stands in for an absent or unparseable last-seen date: old
// enough to score zero on every recency component.
const missingDays = 999

// genericTypes are interaction markers that carry no information about what
// the wallet actually did; they never count toward type diversity.
var genericTypes = map[string]struct{}{
	"unknown":             {},
	"unknown_interaction": {},
}

// Engine turns per-protocol evidence into discrete strengths and a
// cross-protocol summary. Now is swappable for tests.
type Engine struct {
	Now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

// Strength classifies one protocol's evidence. Zero interactions is always
// "none"; otherwise four capped components sum to a raw score that is scaled
// by the protocol weight and banded.
func (e *Engine) Strength(count int, types []string, firstSeen, lastSeen string, weight float64) string {
	if count <= 0 {
		return StrengthNone
	}

	raw := countPoints(count) + diversityPoints(types) + recencyPoints(e.daysSince(lastSeen))
	if durationBonus(firstSeen, lastSeen) {
		raw++
	}

	scaled := float64(raw) * weight
	switch {
	case scaled >= 7:
		return StrengthStrong
	case scaled >= 4:
		return StrengthModerate
	case scaled >= 1:
		return StrengthWeak
	default:
		return StrengthNone
	}
}

// ScoreSignals fills in the signal-strength field of each tokenless signal.
func (e *Engine) ScoreSignals(signals []scan.TokenlessSignal) {
	for i := range signals {
		s := &signals[i]
		if !s.Interacted {
			s.SignalStrength = StrengthNone
			continue
		}
		s.SignalStrength = e.Strength(s.InteractionCount, s.SignalTypes, s.FirstSeen, s.LastSeen, s.ProtocolWeight)
	}
}

func countPoints(count int) int {
	switch {
	case count >= 10:
		return 3
	case count >= 5:
		return 2
	case count >= 2:
		return 1
	default:
		return 0
	}
}

func diversityPoints(types []string) int {
	distinct := map[string]struct{}{}
	for _, t := range types {
		if _, generic := genericTypes[t]; generic {
			continue
		}
		distinct[t] = struct{}{}
	}
	n := len(distinct)
	if n > 3 {
		n = 3
	}
	return n
}

func recencyPoints(days int) int {
	switch {
	case days <= 7:
		return 3
	case days <= 30:
		return 2
	case days <= 90:
		return 1
	default:
		return 0
	}
}

// durationBonus reports sustained usage: both markers present and at least 30
// days apart.
func durationBonus(firstSeen, lastSeen string) bool {
	first, err := time.Parse("2006-01-02", firstSeen)
	if err != nil {
		return false
	}
	last, err := time.Parse("2006-01-02", lastSeen)
	if err != nil {
		return false
	}
	return last.Sub(first) >= 30*24*time.Hour
}

// daysSince converts an ISO date marker to whole days before now.
func (e *Engine) daysSince(date string) int {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return missingDays
	}
	days := int(e.Now().UTC().Sub(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
