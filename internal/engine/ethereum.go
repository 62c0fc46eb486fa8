package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/nexvault/nexvault/internal/log"
)

// fallbackGasPrice (20 gwei) is used when the provider reports no gas
// price, so a fee estimate is always available.
var fallbackGasPrice = big.NewInt(20_000_000_000)

// EthereumSubmitter signs and broadcasts ETH transfers over JSON-RPC.
type EthereumSubmitter struct {
	client  *ethclient.Client
	chainID *big.Int
}

// NewEthereum creates a submitter against the given RPC endpoint.
func NewEthereum(rpcURL string, chainID int64) (*EthereumSubmitter, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum rpc: %w", err)
	}
	return &EthereumSubmitter{client: client, chainID: big.NewInt(chainID)}, nil
}

// NewEthereumWithClient wraps an existing client.
func NewEthereumWithClient(client *ethclient.Client, chainID int64) *EthereumSubmitter {
	return &EthereumSubmitter{client: client, chainID: big.NewInt(chainID)}
}

// ValidateAddress accepts a 0x-prefixed 20-byte hex address.
func (s *EthereumSubmitter) ValidateAddress(address string) error {
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	return nil
}

// gasPrice returns the provider's suggested price, or the fixed fallback
// when none is reported.
func (s *EthereumSubmitter) gasPrice(ctx context.Context) (*big.Int, error) {
	price, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	if price == nil || price.Sign() == 0 {
		log.Engine.Debug().
			Str("fallback", fallbackGasPrice.String()).
			Msg("provider reported no gas price, using fallback")
		return new(big.Int).Set(fallbackGasPrice), nil
	}
	return price, nil
}

// EstimateFee prices the transfer as estimated gas times the gas price.
func (s *EthereumSubmitter) EstimateFee(ctx context.Context, req Request, amount *big.Int) (*big.Int, error) {
	price, err := s.gasPrice(ctx)
	if err != nil {
		return nil, err
	}

	to := common.HexToAddress(req.Recipient)
	gas, err := s.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  common.HexToAddress(req.Account.PublicAddress),
		To:    &to,
		Value: amount,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}

	return new(big.Int).Mul(new(big.Int).SetUint64(gas), price), nil
}

// Submit signs a legacy value transfer with the account key, broadcasts
// it, and waits for the receipt.
func (s *EthereumSubmitter) Submit(ctx context.Context, req Request, amount *big.Int) (string, error) {
	key, err := crypto.ToECDSA(common.FromHex(req.Account.PrivateKeyMaterial))
	if err != nil {
		return "", fmt.Errorf("decode private key: %w", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	to := common.HexToAddress(req.Recipient)

	nonce, err := s.client.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}

	price, err := s.gasPrice(ctx)
	if err != nil {
		return "", err
	}

	gas, err := s.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: amount,
	})
	if err != nil {
		return "", fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTransaction(nonce, to, amount, gas, price, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	log.Engine.Debug().
		Str("hash", signed.Hash().Hex()).
		Uint64("nonce", nonce).
		Uint64("gas", gas).
		Msg("transaction broadcast, waiting for receipt")

	receipt, err := bind.WaitMined(ctx, s.client, signed)
	if err != nil {
		return "", fmt.Errorf("wait for receipt: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", errors.New("transaction reverted")
	}

	return signed.Hash().Hex(), nil
}
