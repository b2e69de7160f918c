package scan

import (
	"context"
	"log/slog"

	"github.com/devblac/airdrop-radar/internal/address"
	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/metrics"
	"github.com/devblac/airdrop-radar/internal/rpc/evm"
)

// EventTopicDetector matches configured event signatures with the user's
// address pinned into the configured topic slot.
type EventTopicDetector struct {
	client    EVMClient
	chunkSize uint64
	log       *slog.Logger
	mtr       *metrics.Metrics
}

func (d *EventTopicDetector) Detect(ctx context.Context, user string, contract catalog.ContractEntry, fromBlock, toBlock uint64, rpcBudget int) DetectionResult {
	cfg := contract.DetectionConfig
	if len(cfg.EventSignatures) == 0 {
		return DetectionResult{}
	}

	result := DetectionResult{}
	paddedUser := address.PadTopic(user)

	for _, sig := range cfg.EventSignatures {
		if result.RPCCallsUsed >= rpcBudget {
			break
		}

		topics := topicsForPosition(sig.Topic0, paddedUser, sig.UserAddressPosition)

		chunkEnd := toBlock
		for chunkEnd >= fromBlock && result.RPCCallsUsed < rpcBudget {
			start := chunkStart(chunkEnd, fromBlock, d.chunkSize)

			logs, err := d.client.GetLogs(ctx, evm.FilterQuery{
				Address:   contract.Address,
				FromBlock: start,
				ToBlock:   chunkEnd,
				Topics:    topics,
			})
			result.RPCCallsUsed++
			if err != nil {
				// One failed chunk costs its call and skips to the next
				// older chunk; it never aborts the signature.
				d.log.Warn("eth_getLogs failed", "contract", contract.Address, "error", err)
				d.mtr.DetectorError()
				if start == 0 {
					break
				}
				chunkEnd = start - 1
				continue
			}

			if len(logs) > 0 {
				result.Interacted = true
				result.InteractionCount += len(logs)
				if !containsType(result.SignalTypes, sig.InteractionType) {
					result.SignalTypes = append(result.SignalTypes, sig.InteractionType)
				}
				for _, lg := range logs {
					result.observeBlock(uint64(lg.BlockNumber))
				}
			}

			if start == 0 {
				break
			}
			chunkEnd = start - 1
		}
	}

	return result
}

// topicsForPosition builds the eth_getLogs topics array with topic0 fixed and
// the padded user address in the configured slot, nil elsewhere.
func topicsForPosition(topic0, paddedUser, position string) []*string {
	topics := []*string{&topic0}
	switch position {
	case "topic1":
		topics = append(topics, &paddedUser)
	case "topic2":
		topics = append(topics, nil, &paddedUser)
	case "topic3":
		topics = append(topics, nil, nil, &paddedUser)
	}
	return topics
}
