package web

import (
	"context"

	"github.com/devblac/airdrop-radar/internal/rpc/solana"
)

// Wallet types reported alongside scan results.
const (
	walletEOA      = "eoa"
	walletContract = "contract"
	walletUnknown  = "unknown"
)

// CodeReader is the EVM bytecode probe used for wallet-type detection.
type CodeReader interface {
	Code(ctx context.Context, address string) (string, error)
}

// AccountReader is the Solana account probe used for wallet-type detection.
type AccountReader interface {
	GetAccountInfo(ctx context.Context, address string) (*solana.AccountInfo, error)
}

// detectWalletType classifies the scanned address. Failures degrade to
// "unknown" with a note; they never fail the scan.
func (s *Server) detectWalletType(ctx context.Context, addr, chain string) (string, []string) {
	if chain == "solana" {
		return s.detectSolanaWallet(ctx, addr)
	}
	return s.detectEVMWallet(ctx, addr)
}

func (s *Server) detectEVMWallet(ctx context.Context, addr string) (string, []string) {
	if s.code == nil {
		return walletUnknown, nil
	}
	code, err := s.code.Code(ctx, addr)
	if err != nil {
		s.log.Warn("wallet-type probe failed", "address", addr, "error", err)
		return walletUnknown, []string{"Wallet type could not be determined."}
	}
	if code == "" || code == "0x" {
		return walletEOA, nil
	}
	return walletContract, []string{"Address is a smart contract; signals may aggregate many users' activity."}
}

func (s *Server) detectSolanaWallet(ctx context.Context, addr string) (string, []string) {
	if s.accounts == nil {
		return walletUnknown, nil
	}
	info, err := s.accounts.GetAccountInfo(ctx, addr)
	if err != nil {
		s.log.Warn("wallet-type probe failed", "address", addr, "error", err)
		return walletUnknown, []string{"Wallet type could not be determined."}
	}
	if info == nil {
		return walletUnknown, []string{"Account not found onchain; it may be unused."}
	}
	if info.Executable {
		return walletContract, []string{"Address is an executable program; signals may aggregate many users' activity."}
	}
	return walletEOA, nil
}
