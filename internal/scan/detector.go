package scan

import (
	"context"
	"log/slog"

	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/metrics"
)

// Detector is the shared contract for EVM detection strategies. A detector
// must never exceed rpcBudget calls, charges failed calls like successful
// ones, and degrades to partial evidence instead of aborting on a single
// transport error.
type Detector interface {
	Detect(ctx context.Context, user string, contract catalog.ContractEntry, fromBlock, toBlock uint64, rpcBudget int) DetectionResult
}

// Registry is the immutable detector set for one process, built once at
// startup and passed down to the coordinator.
type Registry struct {
	detectors map[catalog.DetectionMode]Detector
}

// NewRegistry wires the EVM detector strategies around one client. chunkSize
// is the maximum block range per eth_getLogs call.
func NewRegistry(client EVMClient, chunkSize uint64, log *slog.Logger, mtr *metrics.Metrics) *Registry {
	r := &Registry{detectors: map[catalog.DetectionMode]Detector{}}
	r.detectors[catalog.ModeEventTopic] = &EventTopicDetector{client: client, chunkSize: chunkSize, log: log, mtr: mtr}
	r.detectors[catalog.ModeTransferToContract] = &TransferToContractDetector{client: client, chunkSize: chunkSize, log: log, mtr: mtr}
	r.detectors[catalog.ModeTxToContract] = &TxToContractDetector{client: client, chunkSize: chunkSize, log: log, mtr: mtr}
	r.detectors[catalog.ModeHybrid] = &HybridDetector{registry: r}
	return r
}

// ForMode returns the detector for a mode, if one exists. program_id_match
// has no entry here: it is Solana-only and does not share the EVM contract.
func (r *Registry) ForMode(mode catalog.DetectionMode) (Detector, bool) {
	d, ok := r.detectors[mode]
	return d, ok
}

// chunkStart returns the start of the chunk ending at end, clipped to
// fromBlock. All EVM detectors walk chunks from toBlock downward so recent
// activity is found first when the budget truncates the walk.
func chunkStart(end, fromBlock, chunkSize uint64) uint64 {
	if end+1 > chunkSize && end+1-chunkSize > fromBlock {
		return end + 1 - chunkSize
	}
	return fromBlock
}
