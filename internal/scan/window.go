package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/devblac/airdrop-radar/internal/rpc/evm"
)

// EVMClient is the subset of the EVM RPC client the scan engine uses.
type EVMClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	GetLogs(ctx context.Context, q evm.FilterQuery) ([]evm.Log, error)
	BlockTimestamp(ctx context.Context, block uint64) (uint64, error)
	TimestampCached(block uint64) bool
	BatchTimestamps(ctx context.Context, blocks []uint64) map[uint64]uint64
}

// Window is a resolved [FromBlock, ToBlock] scan range.
type Window struct {
	FromBlock uint64
	ToBlock   uint64
	CallsUsed int
}

const (
	windowSearchMaxIters = 20
	windowSearchBracket  = 10
)

// WindowResolver converts a day-count window into a block range by binary
// searching block timestamps. Timestamp probes hit the client's permanent
// memo cache, so only uncached probes are charged.
type WindowResolver struct {
	client            EVMClient
	blockTimeSeconds  int
	maxScanBlockRange int
	now               func() time.Time
}

// NewWindowResolver builds a resolver. blockTimeSeconds seeds the naive
// estimate; maxScanBlockRange of zero means unclamped.
func NewWindowResolver(client EVMClient, blockTimeSeconds, maxScanBlockRange int, now func() time.Time) *WindowResolver {
	if now == nil {
		now = time.Now
	}
	if blockTimeSeconds <= 0 {
		blockTimeSeconds = 2
	}
	return &WindowResolver{
		client:            client,
		blockTimeSeconds:  blockTimeSeconds,
		maxScanBlockRange: maxScanBlockRange,
		now:               now,
	}
}

// Resolve maps windowDays (already clamped by the caller) to a block range.
// Any RPC failure here is fatal for the whole scan: the caller reports
// completeness "error" with every protocol skipped.
func (r *WindowResolver) Resolve(ctx context.Context, windowDays int) (Window, error) {
	targetTS := r.now().Unix() - int64(windowDays)*86400

	latest, err := r.client.BlockNumber(ctx)
	if err != nil {
		return Window{}, fmt.Errorf("resolve scan window: %w", err)
	}
	calls := 1

	estimatedBack := uint64(windowDays) * 86400 / uint64(r.blockTimeSeconds)
	var low uint64
	if latest > estimatedBack {
		low = latest - estimatedBack
	}

	start, searchCalls, err := r.searchBlockByTimestamp(ctx, targetTS, low, latest)
	if err != nil {
		return Window{}, fmt.Errorf("resolve scan window: %w", err)
	}
	calls += searchCalls

	if r.maxScanBlockRange > 0 && latest > uint64(r.maxScanBlockRange) {
		if maxStart := latest - uint64(r.maxScanBlockRange); start < maxStart {
			start = maxStart
		}
	}

	return Window{FromBlock: start, ToBlock: latest, CallsUsed: calls}, nil
}

// searchBlockByTimestamp narrows [low, high] toward the block whose timestamp
// first reaches targetTS. Probes of already-memoized blocks are free.
func (r *WindowResolver) searchBlockByTimestamp(ctx context.Context, targetTS int64, low, high uint64) (uint64, int, error) {
	calls := 0
	for i := 0; i < windowSearchMaxIters; i++ {
		if high-low <= windowSearchBracket {
			return low, calls, nil
		}
		mid := low + (high-low)/2
		cached := r.client.TimestampCached(mid)
		ts, err := r.client.BlockTimestamp(ctx, mid)
		if err != nil {
			return 0, calls, err
		}
		if !cached {
			calls++
		}
		if int64(ts) < targetTS {
			low = mid
		} else {
			high = mid
		}
	}
	return low, calls, nil
}
