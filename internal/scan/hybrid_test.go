package scan

import (
	"context"
	"testing"

	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/rpc/evm"
)

func hybridContract(modes ...string) catalog.ContractEntry {
	specs := make([]catalog.SubDetectorSpec, 0, len(modes))
	for _, m := range modes {
		specs = append(specs, catalog.SubDetectorSpec{Mode: m})
	}
	return catalog.ContractEntry{
		Address:       "0x7777777777777777777777777777777777777777",
		DetectionMode: catalog.ModeHybrid,
		DetectionConfig: catalog.DetectionConfig{
			EventSignatures: []catalog.EventSignatureConfig{
				{Topic0: "0xaaaa", UserAddressPosition: "topic1", InteractionType: "swap"},
			},
			SubDetectors: specs,
		},
	}
}

func TestHybridMergesSubDetectors(t *testing.T) {
	client := newFakeEVM(0)
	client.logsFn = func(q evm.FilterQuery) ([]evm.Log, error) {
		if q.Topics[0] != nil && *q.Topics[0] == "0xaaaa" {
			return []evm.Log{{BlockNumber: 100, TransactionHash: "0xa"}}, nil
		}
		if len(q.Topics) == 2 {
			return []evm.Log{{BlockNumber: 500, TransactionHash: "0xb"}}, nil
		}
		return []evm.Log{{BlockNumber: 400, TransactionHash: "0xc"}}, nil
	}
	registry := NewRegistry(client, 1000, testLogger(), nil)
	d := &HybridDetector{registry: registry}

	contract := hybridContract("event_topic", "tx_to_contract")
	result := d.Detect(context.Background(), testUser, contract, 0, 999, 20)

	if result.InteractionCount != 3 {
		t.Fatalf("count = %d, want 3 (1 event + 2 tx passes deduped to 2)", result.InteractionCount)
	}
	if !containsType(result.SignalTypes, "swap") || !containsType(result.SignalTypes, "contract_interaction") {
		t.Fatalf("types = %v", result.SignalTypes)
	}
	if result.FirstSeen != "100" || result.LastSeen != "500" {
		t.Fatalf("range = %q..%q", result.FirstSeen, result.LastSeen)
	}
	if result.RPCCallsUsed != 3 {
		t.Fatalf("used = %d, want 3", result.RPCCallsUsed)
	}
}

func TestHybridSkipsNestedHybridAndUnknownModes(t *testing.T) {
	client := newFakeEVM(0)
	registry := NewRegistry(client, 1000, testLogger(), nil)
	d := &HybridDetector{registry: registry}

	contract := hybridContract("hybrid", "no_such_mode", "tx_to_contract")
	result := d.Detect(context.Background(), testUser, contract, 0, 999, 20)

	// Only tx_to_contract ran: two topic passes.
	if result.RPCCallsUsed != 2 {
		t.Fatalf("used = %d, want 2", result.RPCCallsUsed)
	}
}

func TestHybridSharesOneBudget(t *testing.T) {
	client := newFakeEVM(0)
	registry := NewRegistry(client, 100, testLogger(), nil)
	d := &HybridDetector{registry: registry}

	// 0..999 at chunk size 100 is 10 chunks per pass: tx_to wants 20 calls,
	// event_topic wants 10 more. A budget of 25 leaves event_topic only 5.
	contract := hybridContract("tx_to_contract", "event_topic")
	result := d.Detect(context.Background(), testUser, contract, 0, 999, 25)

	if result.RPCCallsUsed != 25 {
		t.Fatalf("used = %d, want exactly the shared budget of 25", result.RPCCallsUsed)
	}
}

func TestHybridEmptySpecsIsNoOp(t *testing.T) {
	client := newFakeEVM(0)
	registry := NewRegistry(client, 1000, testLogger(), nil)
	d := &HybridDetector{registry: registry}

	result := d.Detect(context.Background(), testUser, hybridContract(), 0, 999, 20)
	if result.Interacted || len(client.calls()) != 0 {
		t.Fatal("hybrid without sub-detectors must be a no-op")
	}
}
