package engine

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/nexvault/nexvault/internal/log"
)

// solanaBaseFee is the flat per-signature fee in lamports charged for a
// single-signature transfer.
var solanaBaseFee = big.NewInt(5000)

// statusPollInterval is how often signature status is re-checked while
// waiting for confirmation.
const statusPollInterval = 500 * time.Millisecond

// SolanaSubmitter signs and broadcasts SOL transfers over JSON-RPC.
type SolanaSubmitter struct {
	client *rpc.Client
}

// NewSolana creates a submitter against the given RPC endpoint.
func NewSolana(rpcURL string) *SolanaSubmitter {
	return &SolanaSubmitter{client: rpc.New(rpcURL)}
}

// NewSolanaWithClient wraps an existing client.
func NewSolanaWithClient(client *rpc.Client) *SolanaSubmitter {
	return &SolanaSubmitter{client: client}
}

// ValidateAddress accepts a base58-encoded 32-byte public key.
func (s *SolanaSubmitter) ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	return nil
}

// EstimateFee returns the flat per-signature fee.
func (s *SolanaSubmitter) EstimateFee(ctx context.Context, req Request, amount *big.Int) (*big.Int, error) {
	return new(big.Int).Set(solanaBaseFee), nil
}

// signingKey rebuilds the ed25519 keypair from stored hex material and
// checks it against the account's public address.
func signingKey(req Request) (solana.PrivateKey, error) {
	raw, err := hex.DecodeString(req.Account.PrivateKeyMaterial)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("private key must be 64 bytes, got %d", len(raw))
	}
	key := solana.PrivateKey(raw)
	if key.PublicKey().String() != req.Account.PublicAddress {
		return nil, errors.New("private key does not match account address")
	}
	return key, nil
}

// Submit builds a system transfer, signs it, broadcasts it, and polls
// until the signature confirms or the context ends.
func (s *SolanaSubmitter) Submit(ctx context.Context, req Request, amount *big.Int) (string, error) {
	key, err := signingKey(req)
	if err != nil {
		return "", err
	}
	sender := key.PublicKey()

	recipient, err := solana.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, req.Recipient)
	}

	recent, err := s.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(
				amount.Uint64(),
				sender,
				recipient,
			).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(sender),
	)
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(sender) {
			return &key
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	log.Engine.Debug().
		Str("signature", sig.String()).
		Msg("transaction broadcast, waiting for confirmation")

	if err := s.awaitConfirmation(ctx, sig); err != nil {
		return "", err
	}
	return sig.String(), nil
}

// awaitConfirmation polls signature status until the transaction reaches
// confirmed or finalized commitment.
func (s *SolanaSubmitter) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation wait: %w", ctx.Err())
		case <-ticker.C:
		}

		out, err := s.client.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return fmt.Errorf("get signature status: %w", err)
		}
		if len(out.Value) == 0 || out.Value[0] == nil {
			continue
		}
		status := out.Value[0]
		if status.Err != nil {
			return fmt.Errorf("transaction failed on chain: %v", status.Err)
		}
		switch status.ConfirmationStatus {
		case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
			return nil
		}
	}
}
