package balance

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EthereumQuerier fetches ETH balances (wei) via eth_getBalance at the
// latest block.
type EthereumQuerier struct {
	client *ethclient.Client
}

// NewEthereum creates a querier against the given Ethereum RPC endpoint.
func NewEthereum(rpcURL string) (*EthereumQuerier, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum rpc: %w", err)
	}
	return &EthereumQuerier{client: client}, nil
}

// NewEthereumWithClient wraps an existing client.
func NewEthereumWithClient(client *ethclient.Client) *EthereumQuerier {
	return &EthereumQuerier{client: client}
}

// Fetch returns the wei balance for a 0x address.
func (q *EthereumQuerier) Fetch(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid Ethereum address: %s", address)
	}

	wei, err := q.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance: %w", err)
	}
	return wei, nil
}
