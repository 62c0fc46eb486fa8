package balance

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaQuerier fetches SOL balances (lamports) over JSON-RPC.
type SolanaQuerier struct {
	client *rpc.Client
}

// NewSolana creates a querier against the given Solana RPC endpoint.
func NewSolana(rpcURL string) *SolanaQuerier {
	return &SolanaQuerier{client: rpc.New(rpcURL)}
}

// Fetch returns the lamport balance for a base58 address.
func (q *SolanaQuerier) Fetch(ctx context.Context, address string) (*big.Int, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid Solana address: %w", err)
	}

	out, err := q.client.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("getBalance: %w", err)
	}
	return new(big.Int).SetUint64(out.Value), nil
}
