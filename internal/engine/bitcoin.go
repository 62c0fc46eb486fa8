package engine

import (
	"context"
	"fmt"
	"math/big"
)

// BitcoinSubmitter is the placeholder for the Bitcoin variant. Its key
// material is not usable for real Bitcoin transactions, so every address
// fails validation and submission is refused outright.
type BitcoinSubmitter struct{}

// NewBitcoin creates the placeholder submitter.
func NewBitcoin() *BitcoinSubmitter {
	return &BitcoinSubmitter{}
}

// ValidateAddress rejects every address.
func (s *BitcoinSubmitter) ValidateAddress(address string) error {
	return fmt.Errorf("%w: %s", ErrInvalidAddress, address)
}

// EstimateFee reports zero; no fee model exists for the placeholder.
func (s *BitcoinSubmitter) EstimateFee(ctx context.Context, req Request, amount *big.Int) (*big.Int, error) {
	return big.NewInt(0), nil
}

// Submit always refuses.
func (s *BitcoinSubmitter) Submit(ctx context.Context, req Request, amount *big.Int) (string, error) {
	return "", ErrUnsupportedNetwork
}
