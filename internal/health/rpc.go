package health

import (
	"context"
	"fmt"
)

// EVMPinger is the minimal EVM liveness probe.
type EVMPinger interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// SolanaPinger is the minimal Solana liveness probe.
type SolanaPinger interface {
	Health(ctx context.Context) error
}

// RPCChecker combines the chain RPC health checks. Either client may be nil
// when the deployment serves a single chain.
type RPCChecker struct {
	evm EVMPinger
	sol SolanaPinger
}

// NewRPCChecker creates a checker over the configured chain clients.
func NewRPCChecker(evm EVMPinger, sol SolanaPinger) *RPCChecker {
	return &RPCChecker{evm: evm, sol: sol}
}

// Ping checks every configured RPC endpoint and returns the last failure.
func (c *RPCChecker) Ping(ctx context.Context) error {
	var lastErr error
	if c.evm != nil {
		if _, err := c.evm.BlockNumber(ctx); err != nil {
			lastErr = fmt.Errorf("evm rpc: %w", err)
		}
	}
	if c.sol != nil {
		if err := c.sol.Health(ctx); err != nil {
			lastErr = fmt.Errorf("solana rpc: %w", err)
		}
	}
	return lastErr
}
