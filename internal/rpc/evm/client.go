// Package evm is a thin JSON-RPC client for EVM chains with per-call error
// surfacing and a permanent block-timestamp cache.
package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Log is the subset of an eth_getLogs entry the detectors consume.
type Log struct {
	Address         string         `json:"address"`
	BlockNumber     hexutil.Uint64 `json:"blockNumber"`
	TransactionHash string         `json:"transactionHash"`
}

// FilterQuery describes one eth_getLogs call. Nil topic slots match anything.
type FilterQuery struct {
	Address   string
	FromBlock uint64
	ToBlock   uint64
	Topics    []*string
}

type logFilterArg struct {
	Address   string    `json:"address"`
	FromBlock string    `json:"fromBlock"`
	ToBlock   string    `json:"toBlock"`
	Topics    []*string `json:"topics,omitempty"`
}

type blockHeader struct {
	Timestamp hexutil.Uint64 `json:"timestamp"`
}

// Client wraps a go-ethereum rpc.Client. Every exported method is exactly one
// RPC call unless it hits the timestamp cache.
type Client struct {
	rpc *gethrpc.Client
	ts  *TimestampCache
}

// Dial connects to an EVM JSON-RPC endpoint.
func Dial(rpcURL string) (*Client, error) {
	c, err := gethrpc.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial evm rpc: %w", err)
	}
	return &Client{rpc: c, ts: NewTimestampCache()}, nil
}

// NewClient wraps an existing rpc.Client (used by tests).
func NewClient(rpc *gethrpc.Client) *Client {
	return &Client{rpc: rpc, ts: NewTimestampCache()}
}

// Close releases the underlying connection.
func (c *Client) Close() {
	if c != nil && c.rpc != nil {
		c.rpc.Close()
	}
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var out hexutil.Uint64
	if err := c.rpc.CallContext(ctx, &out, "eth_blockNumber"); err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}
	return uint64(out), nil
}

// GetLogs runs one eth_getLogs call for the given filter.
func (c *Client) GetLogs(ctx context.Context, q FilterQuery) ([]Log, error) {
	arg := logFilterArg{
		Address:   q.Address,
		FromBlock: hexutil.EncodeUint64(q.FromBlock),
		ToBlock:   hexutil.EncodeUint64(q.ToBlock),
		Topics:    q.Topics,
	}
	var out []Log
	if err := c.rpc.CallContext(ctx, &out, "eth_getLogs", arg); err != nil {
		return nil, fmt.Errorf("eth_getLogs %s [%d, %d]: %w", q.Address, q.FromBlock, q.ToBlock, err)
	}
	return out, nil
}

// BlockTimestamp returns a block's Unix timestamp, consulting the permanent
// cache first. Cache hits cost no RPC call.
func (c *Client) BlockTimestamp(ctx context.Context, block uint64) (uint64, error) {
	if ts, ok := c.ts.Get(block); ok {
		return ts, nil
	}
	var header blockHeader
	if err := c.rpc.CallContext(ctx, &header, "eth_getBlockByNumber", hexutil.EncodeUint64(block), false); err != nil {
		return 0, fmt.Errorf("eth_getBlockByNumber %d: %w", block, err)
	}
	ts := uint64(header.Timestamp)
	c.ts.Put(block, ts)
	return ts, nil
}

// TimestampCached reports whether a block's timestamp is already memoized,
// letting callers charge only uncached probes against their budget.
func (c *Client) TimestampCached(block uint64) bool {
	_, ok := c.ts.Get(block)
	return ok
}

// Code returns the contract code at an address ("0x" for EOAs).
func (c *Client) Code(ctx context.Context, address string) (string, error) {
	var out string
	if err := c.rpc.CallContext(ctx, &out, "eth_getCode", address, "latest"); err != nil {
		return "", fmt.Errorf("eth_getCode %s: %w", address, err)
	}
	if out == "" {
		return "0x", nil
	}
	return out, nil
}
