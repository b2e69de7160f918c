package scan

import (
	"context"
	"errors"
	"testing"
	"time"
)

// The fake chain ticks one block every 12 seconds, so block N has timestamp
// N*12 and "now" at latest*12 makes the chain exactly current.
func fixedNow(f *fakeEVM) func() time.Time {
	return func() time.Time {
		return time.Unix(int64(f.latest*f.blockTime), 0)
	}
}

func TestResolveFindsWindowStart(t *testing.T) {
	client := newFakeEVM(1_000_000)
	r := NewWindowResolver(client, 12, 0, fixedNow(client))

	w, err := r.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if w.ToBlock != 1_000_000 {
		t.Fatalf("ToBlock = %d, want latest", w.ToBlock)
	}

	// One day is 7200 blocks at 12s; the search stops once the bracket is
	// within 10 blocks of the target.
	target := uint64(1_000_000 - 7200)
	if w.FromBlock > target || target-w.FromBlock > 10 {
		t.Fatalf("FromBlock = %d, want within 10 below %d", w.FromBlock, target)
	}
}

func TestResolveChargesOnlyUncachedProbes(t *testing.T) {
	client := newFakeEVM(1_000_000)
	r := NewWindowResolver(client, 12, 0, fixedNow(client))

	first, err := r.Resolve(context.Background(), 7)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first.CallsUsed != 1+client.tsFetches {
		t.Fatalf("CallsUsed = %d, want 1 + %d probe fetches", first.CallsUsed, client.tsFetches)
	}
	if client.tsFetches == 0 {
		t.Fatal("expected at least one timestamp probe")
	}

	// Re-resolving the same window hits only memoized blocks.
	second, err := r.Resolve(context.Background(), 7)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if second.CallsUsed != 1 {
		t.Fatalf("second CallsUsed = %d, want 1 (probes memoized)", second.CallsUsed)
	}
	if second.FromBlock != first.FromBlock {
		t.Fatalf("resolution not deterministic: %d vs %d", second.FromBlock, first.FromBlock)
	}
}

func TestResolveClampsToMaxRange(t *testing.T) {
	client := newFakeEVM(1_000_000)
	r := NewWindowResolver(client, 12, 500, fixedNow(client))

	w, err := r.Resolve(context.Background(), 30)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if w.FromBlock != 1_000_000-500 {
		t.Fatalf("FromBlock = %d, want clamped to latest-500", w.FromBlock)
	}
}

func TestResolveBlockNumberErrorIsFatal(t *testing.T) {
	client := newFakeEVM(1_000_000)
	client.latestErr = errors.New("rpc down")
	r := NewWindowResolver(client, 12, 0, fixedNow(client))

	if _, err := r.Resolve(context.Background(), 7); err == nil {
		t.Fatal("expected error when eth_blockNumber fails")
	}
}

func TestResolveTimestampErrorIsFatal(t *testing.T) {
	client := newFakeEVM(1_000_000)
	client.tsErr = errors.New("rpc down")
	r := NewWindowResolver(client, 12, 0, fixedNow(client))

	if _, err := r.Resolve(context.Background(), 7); err == nil {
		t.Fatal("expected error when a timestamp probe fails")
	}
}

func TestResolveNearGenesis(t *testing.T) {
	client := newFakeEVM(100)
	r := NewWindowResolver(client, 12, 0, fixedNow(client))

	// The naive estimate reaches past block 0; low clamps to genesis and the
	// search walks the bracket down without underflowing.
	w, err := r.Resolve(context.Background(), 30)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if w.FromBlock != 0 || w.ToBlock != 100 {
		t.Fatalf("window = [%d, %d], want [0, 100]", w.FromBlock, w.ToBlock)
	}
}
