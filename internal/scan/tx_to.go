package scan

import (
	"context"
	"log/slog"

	"github.com/devblac/airdrop-radar/internal/address"
	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/metrics"
	"github.com/devblac/airdrop-radar/internal/rpc/evm"
)

// TxToContractDetector is the catch-all strategy for contracts without
// configured event signatures: any log emitted by the contract with the user
// at topic1 or topic2 counts, deduplicated by transaction hash.
type TxToContractDetector struct {
	client    EVMClient
	chunkSize uint64
	log       *slog.Logger
	mtr       *metrics.Metrics
}

func (d *TxToContractDetector) Detect(ctx context.Context, user string, contract catalog.ContractEntry, fromBlock, toBlock uint64, rpcBudget int) DetectionResult {
	result := DetectionResult{}
	paddedUser := address.PadTopic(user)

	logs1 := d.chunkedQuery(ctx, &result, contract, fromBlock, toBlock, rpcBudget, []*string{nil, &paddedUser})
	logs2 := d.chunkedQuery(ctx, &result, contract, fromBlock, toBlock, rpcBudget, []*string{nil, nil, &paddedUser})

	seen := map[string]struct{}{}
	var all []evm.Log
	for _, lg := range append(logs1, logs2...) {
		if lg.TransactionHash == "" {
			continue
		}
		if _, dup := seen[lg.TransactionHash]; dup {
			continue
		}
		seen[lg.TransactionHash] = struct{}{}
		all = append(all, lg)
	}

	if len(all) > 0 {
		result.Interacted = true
		result.InteractionCount = len(all)
		result.SignalTypes = append(result.SignalTypes, "contract_interaction")
		for _, lg := range all {
			result.observeBlock(uint64(lg.BlockNumber))
		}
	}

	return result
}

func (d *TxToContractDetector) chunkedQuery(ctx context.Context, result *DetectionResult, contract catalog.ContractEntry, fromBlock, toBlock uint64, rpcBudget int, topics []*string) []evm.Log {
	var logs []evm.Log
	chunkEnd := toBlock
	for chunkEnd >= fromBlock && result.RPCCallsUsed < rpcBudget {
		start := chunkStart(chunkEnd, fromBlock, d.chunkSize)

		chunkLogs, err := d.client.GetLogs(ctx, evm.FilterQuery{
			Address:   contract.Address,
			FromBlock: start,
			ToBlock:   chunkEnd,
			Topics:    topics,
		})
		result.RPCCallsUsed++
		if err != nil {
			d.log.Warn("eth_getLogs failed", "contract", contract.Address, "error", err)
			d.mtr.DetectorError()
		} else {
			logs = append(logs, chunkLogs...)
		}

		if start == 0 {
			break
		}
		chunkEnd = start - 1
	}
	return logs
}
