package scan

import (
	"context"

	"github.com/devblac/airdrop-radar/internal/catalog"
)

// HybridDetector runs an ordered list of sub-detectors against the same
// contract under one shared sub-budget. Unrecognized or nested-hybrid modes
// are skipped, never fatal.
type HybridDetector struct {
	registry *Registry
}

func (d *HybridDetector) Detect(ctx context.Context, user string, contract catalog.ContractEntry, fromBlock, toBlock uint64, rpcBudget int) DetectionResult {
	merged := DetectionResult{}
	specs := contract.DetectionConfig.SubDetectors
	if len(specs) == 0 {
		return merged
	}

	used := 0
	for _, spec := range specs {
		if used >= rpcBudget {
			break
		}
		mode := catalog.DetectionMode(spec.Mode)
		if mode == catalog.ModeHybrid {
			continue
		}
		sub, ok := d.registry.ForMode(mode)
		if !ok {
			continue
		}
		result := sub.Detect(ctx, user, contract, fromBlock, toBlock, rpcBudget-used)
		used += result.RPCCallsUsed
		Merge(&merged, result)
	}

	merged.RPCCallsUsed = used
	return merged
}
