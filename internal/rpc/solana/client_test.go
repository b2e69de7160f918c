package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func rpcServer(t *testing.T, handler func(method string, params []json.RawMessage) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGetSignaturesForAddress(t *testing.T) {
	srv := rpcServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		if method != "getSignaturesForAddress" {
			t.Fatalf("unexpected method %s", method)
		}
		var opts map[string]any
		if err := json.Unmarshal(params[1], &opts); err != nil {
			t.Fatalf("decode opts: %v", err)
		}
		if opts["limit"].(float64) != 1000 {
			t.Fatalf("limit should be capped at 1000, got %v", opts["limit"])
		}
		bt := int64(1700000000)
		return []SignatureInfo{{Signature: "sig1", Slot: 5, BlockTime: &bt}}, nil
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	sigs, err := c.GetSignaturesForAddress(context.Background(), "SomeAddr", 5000, "")
	if err != nil {
		t.Fatalf("get signatures: %v", err)
	}
	if len(sigs) != 1 || sigs[0].Signature != "sig1" {
		t.Fatalf("unexpected signatures: %+v", sigs)
	}
}

func TestCallSurfacesRPCError(t *testing.T) {
	srv := rpcServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: -32005, Message: "node is behind"}
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.GetSignaturesForAddress(context.Background(), "SomeAddr", 10, ""); err == nil {
		t.Fatalf("expected rpc error to surface")
	}
}

func TestGetTransactionRawFallbackShape(t *testing.T) {
	srv := rpcServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		if method != "getTransaction" {
			t.Fatalf("unexpected method %s", method)
		}
		return map[string]any{
			"blockTime": 1700000123,
			"transaction": map[string]any{
				"message": map[string]any{
					// Mixed key shapes, as returned by different node versions.
					"accountKeys": []any{
						map[string]any{"pubkey": "ProgramAAA"},
						"WalletBBB",
					},
				},
			},
		}, nil
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	tx, err := c.GetTransaction(context.Background(), "sig1")
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if tx == nil {
		t.Fatalf("expected a transaction")
	}
	if tx.Timestamp != 1700000123 {
		t.Fatalf("timestamp = %d", tx.Timestamp)
	}
	if len(tx.AccountKeys) != 2 || tx.AccountKeys[0] != "ProgramAAA" || tx.AccountKeys[1] != "WalletBBB" {
		t.Fatalf("account keys = %v", tx.AccountKeys)
	}
}

func TestGetTransactionNilForUnknownSignature(t *testing.T) {
	srv := rpcServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		return nil, nil
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	tx, err := c.GetTransaction(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if tx != nil {
		t.Fatalf("expected nil transaction, got %+v", tx)
	}
}

func TestHeliusAvailability(t *testing.T) {
	if NewHeliusClient("", "https://api.helius.xyz").Available() {
		t.Fatalf("empty key should be unavailable")
	}
	if !NewHeliusClient("k", "https://api.helius.xyz").Available() {
		t.Fatalf("configured key should be available")
	}
}

func TestHeliusParseTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/transactions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api-key") != "test-key" {
			t.Fatalf("missing api key")
		}
		var body map[string][]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(body["transactions"]) != 2 {
			t.Fatalf("expected 2 signatures, got %v", body)
		}
		_ = json.NewEncoder(w).Encode([]ParsedTransaction{
			{
				Signature: "sig1",
				Type:      "SWAP",
				Timestamp: 1700000000,
				Instructions: []Instruction{
					{ProgramID: "ProgA", Data: "abc", InnerInstructions: []InnerInstruction{{ProgramID: "ProgB"}}},
				},
				AccountData: []AccountEntry{{Account: "ProgA"}},
			},
		})
	}))
	defer srv.Close()

	h := NewHeliusClient("test-key", srv.URL)
	txs, err := h.ParseTransactions(context.Background(), []string{"sig1", "sig2"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(txs) != 1 || txs[0].Type != "SWAP" {
		t.Fatalf("unexpected parse result: %+v", txs)
	}
	if txs[0].Instructions[0].InnerInstructions[0].ProgramID != "ProgB" {
		t.Fatalf("inner instructions not decoded")
	}
}
