package solana

import "encoding/json"

// ParsedTransaction is the unified transaction shape the program-id detector
// consumes. Helius enhanced parses fill Type, Instructions, and AccountData;
// the raw jsonParsed fallback fills AccountKeys only.
type ParsedTransaction struct {
	Signature    string         `json:"signature"`
	Type         string         `json:"type"`
	Timestamp    int64          `json:"timestamp"`
	Instructions []Instruction  `json:"instructions"`
	AccountData  []AccountEntry `json:"accountData"`
	AccountKeys  []string       `json:"-"`
}

// Instruction is one top-level instruction with its inner instructions.
type Instruction struct {
	ProgramID         string             `json:"programId"`
	Data              string             `json:"data"`
	Accounts          []string           `json:"accounts"`
	InnerInstructions []InnerInstruction `json:"innerInstructions"`
}

// InnerInstruction is a CPI nested under a top-level instruction.
type InnerInstruction struct {
	ProgramID string `json:"programId"`
	Data      string `json:"data"`
}

// AccountEntry is one Helius accountData entry.
type AccountEntry struct {
	Account             string `json:"account"`
	NativeBalanceChange int64  `json:"nativeBalanceChange"`
}

// rawTransaction mirrors the getTransaction jsonParsed result closely enough
// to extract block time and account keys. Account keys arrive either as bare
// strings or as {"pubkey": ...} objects depending on the node.
type rawTransaction struct {
	BlockTime   *int64 `json:"blockTime"`
	Transaction struct {
		Message struct {
			AccountKeys []accountKey `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
}

type accountKey struct {
	Pubkey string
}

func (k *accountKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		k.Pubkey = s
		return nil
	}
	var obj struct {
		Pubkey string `json:"pubkey"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	k.Pubkey = obj.Pubkey
	return nil
}

func (r *rawTransaction) toParsed(signature string) *ParsedTransaction {
	tx := &ParsedTransaction{Signature: signature}
	if r.BlockTime != nil {
		tx.Timestamp = *r.BlockTime
	}
	for _, k := range r.Transaction.Message.AccountKeys {
		if k.Pubkey != "" {
			tx.AccountKeys = append(tx.AccountKeys, k.Pubkey)
		}
	}
	return tx
}
