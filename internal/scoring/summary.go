package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/scan"
)

// Likelihood bands, weakest to strongest.
const (
	LikelihoodMinimal = "minimal"
	LikelihoodLow     = "low"
	LikelihoodMedium  = "medium"
	LikelihoodHigh    = "high"
)

// Summary is the cross-protocol rollup. Likelihood is driven only by
// interacted tokenless protocols; category diversity spans every signal in
// the scan.
type Summary struct {
	Likelihood          string   `json:"airdrop_likelihood"`
	TokenlessInteracted int      `json:"tokenless_protocols_interacted"`
	RecencyScore        float64  `json:"recency_score"`
	DiversityScore      float64  `json:"diversity_score"`
	CategoriesCovered   []string `json:"categories_covered"`
}

// NextAction suggests one uncovered category with concrete protocols to try.
type NextAction struct {
	Category   string   `json:"category"`
	Suggestion string   `json:"suggestion"`
	Candidates []string `json:"candidates"`
}

// BuildSummary rolls every signal of one scan into the wallet-level summary.
func (e *Engine) BuildSummary(tokenless []scan.TokenlessSignal, tokened []scan.TokenedSignal) Summary {
	interacted := 0
	recencySum := 0.0
	for _, s := range tokenless {
		if !s.Interacted {
			continue
		}
		interacted++
		days := e.daysSince(s.LastSeen)
		recencySum += math.Max(0, 1-float64(days)/180)
	}
	recency := 0.0
	if interacted > 0 {
		recency = recencySum / float64(interacted)
	}

	seen := map[string]bool{}
	covered := map[string]bool{}
	for _, s := range tokenless {
		if s.Category == "" {
			continue
		}
		seen[s.Category] = true
		if s.Interacted {
			covered[s.Category] = true
		}
	}
	for _, s := range tokened {
		if s.Category == "" {
			continue
		}
		seen[s.Category] = true
		if s.Interacted {
			covered[s.Category] = true
		}
	}
	diversity := 0.0
	if len(seen) > 0 {
		diversity = float64(len(covered)) / float64(len(seen))
	}

	var coveredList []string
	for _, cat := range catalog.Categories {
		if covered[cat] {
			coveredList = append(coveredList, cat)
		}
	}

	return Summary{
		Likelihood:          likelihood(interacted, recency, diversity),
		TokenlessInteracted: interacted,
		RecencyScore:        round2(recency),
		DiversityScore:      round2(diversity),
		CategoriesCovered:   coveredList,
	}
}

func likelihood(interacted int, recency, diversity float64) string {
	switch {
	case interacted >= 5 && recency >= 0.5 && diversity >= 0.5:
		return LikelihoodHigh
	case interacted >= 2 && (recency >= 0.3 || diversity >= 0.3):
		return LikelihoodMedium
	case interacted >= 1:
		return LikelihoodLow
	default:
		return LikelihoodMinimal
	}
}

// NextActions suggests up to three uncovered categories, in category order,
// each backed by the strongest available tokenless candidates on the chain.
// Coverage counts every interacted signal, tokened included, so a category the
// wallet already touched through a tokened protocol gets no suggestion.
func (e *Engine) NextActions(tokenless []scan.TokenlessSignal, tokened []scan.TokenedSignal, chain string) []NextAction {
	covered := map[string]bool{}
	byCategory := map[string][]scan.TokenlessSignal{}
	for _, s := range tokenless {
		if s.Interacted {
			covered[s.Category] = true
			continue
		}
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}
	for _, s := range tokened {
		if s.Interacted {
			covered[s.Category] = true
		}
	}

	var actions []NextAction
	for _, cat := range catalog.Categories {
		if len(actions) == 3 {
			break
		}
		if covered[cat] {
			continue
		}
		candidates := byCategory[cat]
		if len(candidates) == 0 {
			continue
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].ProtocolWeight > candidates[j].ProtocolWeight
		})
		if len(candidates) > 2 {
			candidates = candidates[:2]
		}
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.ProtocolName)
		}

		actions = append(actions, NextAction{
			Category:   cat,
			Suggestion: fmt.Sprintf("No %s activity found on %s. Consider trying %s.", cat, chain, strings.Join(names, " or ")),
			Candidates: names,
		})
	}
	return actions
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
