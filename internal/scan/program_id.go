package scan

import (
	"strconv"
	"strings"

	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/rpc/solana"
)

// ProgramIDMatcher detects Solana interactions by matching program ids in an
// already-fetched, already-parsed transaction batch. Unlike the EVM
// detectors it makes no RPC calls of its own: the coordinator fetches and
// parses signatures once per scan and reuses the batch for every protocol.
type ProgramIDMatcher struct{}

// DetectFromParsed scans the batch for transactions involving the contract's
// program id. Signal types are the distinct Helius transaction types among
// the matches, in first-match order.
func (ProgramIDMatcher) DetectFromParsed(contract catalog.ContractEntry, txs []solana.ParsedTransaction) DetectionResult {
	result := DetectionResult{}
	programID := strings.TrimSpace(contract.Address)

	discriminators := contract.DetectionConfig.InstructionDiscriminators

	var matches []solana.ParsedTransaction
	for _, tx := range txs {
		if txInvolvesProgram(tx, programID, discriminators) {
			matches = append(matches, tx)
		}
	}
	if len(matches) == 0 {
		return result
	}

	result.Interacted = true
	result.InteractionCount = len(matches)

	var first, last int64
	for _, tx := range matches {
		txType := tx.Type
		if txType == "" {
			txType = "unknown"
		}
		if !containsType(result.SignalTypes, txType) {
			result.SignalTypes = append(result.SignalTypes, txType)
		}
		if tx.Timestamp > 0 {
			if first == 0 || tx.Timestamp < first {
				first = tx.Timestamp
			}
			if tx.Timestamp > last {
				last = tx.Timestamp
			}
		}
	}
	if first > 0 {
		result.FirstSeen = strconv.FormatInt(first, 10)
		result.LastSeen = strconv.FormatInt(last, 10)
	}

	return result
}

// txInvolvesProgram checks one transaction against a program id. Top-level
// instruction matches honor configured discriminator prefixes; inner
// instruction matches bypass the discriminator check entirely (intentional
// asymmetry). accountData and the raw account-key list are fallbacks for
// transactions that lack parsed instructions.
func txInvolvesProgram(tx solana.ParsedTransaction, programID string, discriminators []string) bool {
	for _, ix := range tx.Instructions {
		if ix.ProgramID == programID {
			if len(discriminators) == 0 {
				return true
			}
			for _, disc := range discriminators {
				if strings.HasPrefix(ix.Data, disc) {
					return true
				}
			}
		}
		for _, inner := range ix.InnerInstructions {
			if inner.ProgramID == programID {
				return true
			}
		}
	}

	for _, acc := range tx.AccountData {
		if acc.Account == programID {
			return true
		}
	}

	for _, key := range tx.AccountKeys {
		if key == programID {
			return true
		}
	}

	return false
}
