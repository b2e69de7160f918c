// Package solana is a minimal Solana JSON-RPC client plus a Helius
// enhanced-transaction client. Both surface errors per call so the scan
// coordinator can charge budgets and degrade deterministically.
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

const defaultTimeout = 10 * time.Second

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// SignatureInfo is one getSignaturesForAddress entry.
type SignatureInfo struct {
	Signature string `json:"signature"`
	Slot      int64  `json:"slot"`
	BlockTime *int64 `json:"blockTime"`
	Err       any    `json:"err"`
}

// AccountInfo is the value field of getAccountInfo.
type AccountInfo struct {
	Executable bool   `json:"executable"`
	Owner      string `json:"owner"`
	Lamports   uint64 `json:"lamports"`
}

// Client talks JSON-RPC 2.0 to a Solana node.
type Client struct {
	endpoint  string
	client    *http.Client
	requestID atomic.Uint64
}

// NewClient creates a Solana RPC client.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d: %s", method, resp.StatusCode, truncate(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	if result != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// GetSignaturesForAddress returns up to limit recent signatures for a wallet.
// The node caps limit at 1000.
func (c *Client) GetSignaturesForAddress(ctx context.Context, address string, limit int, before string) ([]SignatureInfo, error) {
	if limit > 1000 {
		limit = 1000
	}
	opts := map[string]any{"limit": limit}
	if before != "" {
		opts["before"] = before
	}
	var out []SignatureInfo
	if err := c.call(ctx, "getSignaturesForAddress", []any{address, opts}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAccountInfo returns the parsed account value, nil for unknown accounts.
func (c *Client) GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	var out struct {
		Value *AccountInfo `json:"value"`
	}
	opts := map[string]any{"encoding": "jsonParsed"}
	if err := c.call(ctx, "getAccountInfo", []any{address, opts}, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// GetTransaction fetches one transaction in jsonParsed encoding and converts
// it into the unified ParsedTransaction shape. Returns nil for unknown
// signatures.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*ParsedTransaction, error) {
	opts := map[string]any{
		"encoding":                       "jsonParsed",
		"maxSupportedTransactionVersion": 0,
	}
	var out *rawTransaction
	if err := c.call(ctx, "getTransaction", []any{signature, opts}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return out.toParsed(signature), nil
}

// Health checks node liveness via getHealth.
func (c *Client) Health(ctx context.Context) error {
	var out string
	if err := c.call(ctx, "getHealth", nil, &out); err != nil {
		return err
	}
	if out != "ok" {
		return fmt.Errorf("getHealth: node reports %q", out)
	}
	return nil
}
