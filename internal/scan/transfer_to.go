package scan

import (
	"context"
	"log/slog"

	"github.com/devblac/airdrop-radar/internal/address"
	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/metrics"
	"github.com/devblac/airdrop-radar/internal/rpc/evm"
	"github.com/ethereum/go-ethereum/crypto"
)

// transferTopic0 is keccak256("Transfer(address,address,uint256)").
var transferTopic0 = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")).Hex()

// TransferToContractDetector matches ERC-20 Transfer(from=user, to=contract)
// on each configured token contract.
type TransferToContractDetector struct {
	client    EVMClient
	chunkSize uint64
	log       *slog.Logger
	mtr       *metrics.Metrics
}

func (d *TransferToContractDetector) Detect(ctx context.Context, user string, contract catalog.ContractEntry, fromBlock, toBlock uint64, rpcBudget int) DetectionResult {
	cfg := contract.DetectionConfig
	if len(cfg.TokenContracts) == 0 {
		return DetectionResult{}
	}

	result := DetectionResult{}
	paddedUser := address.PadTopic(user)
	paddedContract := address.PadTopic(contract.Address)
	topic0 := transferTopic0

	for _, tokenAddr := range cfg.TokenContracts {
		if result.RPCCallsUsed >= rpcBudget {
			break
		}

		var logs []evm.Log
		chunkEnd := toBlock
		for chunkEnd >= fromBlock && result.RPCCallsUsed < rpcBudget {
			start := chunkStart(chunkEnd, fromBlock, d.chunkSize)

			chunkLogs, err := d.client.GetLogs(ctx, evm.FilterQuery{
				Address:   tokenAddr,
				FromBlock: start,
				ToBlock:   chunkEnd,
				Topics:    []*string{&topic0, &paddedUser, &paddedContract},
			})
			result.RPCCallsUsed++
			if err != nil {
				d.log.Warn("eth_getLogs failed for Transfer", "contract", contract.Address, "token", tokenAddr, "error", err)
				d.mtr.DetectorError()
			} else {
				logs = append(logs, chunkLogs...)
			}

			if start == 0 {
				break
			}
			chunkEnd = start - 1
		}

		if len(logs) > 0 {
			result.Interacted = true
			result.InteractionCount += len(logs)
			interactionType := cfg.InteractionType
			if interactionType == "" {
				interactionType = "token_transfer"
			}
			if !containsType(result.SignalTypes, interactionType) {
				result.SignalTypes = append(result.SignalTypes, interactionType)
			}
			for _, lg := range logs {
				result.observeBlock(uint64(lg.BlockNumber))
			}
		}
	}

	return result
}
