package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const heliusTimeout = 15 * time.Second

// HeliusClient wraps the Helius enhanced transaction API. When no API key is
// configured the client reports unavailable and callers fall back to raw RPC.
type HeliusClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewHeliusClient builds a Helius client; apiKey may be empty.
func NewHeliusClient(apiKey, baseURL string) *HeliusClient {
	return &HeliusClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: heliusTimeout},
	}
}

// Available reports whether an API key is configured.
func (h *HeliusClient) Available() bool {
	return h != nil && h.apiKey != ""
}

// RPC returns a Solana RPC client pointed at the Helius RPC endpoint.
func (h *HeliusClient) RPC() *Client {
	return NewClient(fmt.Sprintf("https://mainnet.helius-rpc.com/?api-key=%s", h.apiKey))
}

// ParseTransactions resolves a batch of signatures into enhanced parsed
// transactions via POST /v0/transactions. The caller chunks batches.
func (h *HeliusClient) ParseTransactions(ctx context.Context, signatures []string) ([]ParsedTransaction, error) {
	if len(signatures) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(map[string][]string{"transactions": signatures})
	if err != nil {
		return nil, fmt.Errorf("marshal parse request: %w", err)
	}

	url := fmt.Sprintf("%s/v0/transactions?api-key=%s", h.baseURL, h.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parse transactions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse transactions: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parse transactions: status %d: %s", resp.StatusCode, truncate(body))
	}

	var out []ParsedTransaction
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse transactions: decode: %w", err)
	}
	return out, nil
}
