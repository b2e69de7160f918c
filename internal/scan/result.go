package scan

import "strconv"

// DetectionResult is the mutable evidence accumulator for one protocol within
// one scan. FirstSeen/LastSeen are stringified integers: EVM block numbers or
// Solana Unix timestamps, rewritten to ISO dates before scoring. SignalTypes
// is append-only during detection and merging; deduplication happens exactly
// once, when the per-protocol signal is built.
type DetectionResult struct {
	Interacted       bool
	InteractionCount int
	SignalTypes      []string
	FirstSeen        string
	LastSeen         string
	RPCCallsUsed     int
}

// Merge folds source into target. Non-interacted sources are a strict no-op.
// Counts sum, signal types append, and the seen markers only move outward
// when the source value parses as an integer and is strictly more extreme.
// The operation is associative and idempotent over grouping: it is applied
// incrementally across contracts and across hybrid sub-detectors.
func Merge(target *DetectionResult, source DetectionResult) {
	if !source.Interacted {
		return
	}
	target.Interacted = true
	target.InteractionCount += source.InteractionCount
	target.SignalTypes = append(target.SignalTypes, source.SignalTypes...)

	if v, ok := parseMarker(source.FirstSeen); ok {
		if cur, curOK := parseMarker(target.FirstSeen); !curOK || v < cur {
			target.FirstSeen = source.FirstSeen
		}
	}
	if v, ok := parseMarker(source.LastSeen); ok {
		if cur, curOK := parseMarker(target.LastSeen); !curOK || v > cur {
			target.LastSeen = source.LastSeen
		}
	}
}

func parseMarker(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// observeBlock widens the result's seen range to include a block number.
func (r *DetectionResult) observeBlock(block uint64) {
	marker := strconv.FormatUint(block, 10)
	v := int64(block)
	if cur, ok := parseMarker(r.FirstSeen); !ok || v < cur {
		r.FirstSeen = marker
	}
	if cur, ok := parseMarker(r.LastSeen); !ok || v > cur {
		r.LastSeen = marker
	}
}

func dedupTypes(types []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func containsType(types []string, t string) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}
