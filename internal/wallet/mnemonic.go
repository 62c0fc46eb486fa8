// Package wallet implements the HD wallet core: mnemonic handling and
// per-network deterministic key derivation.
package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicWordCount is the required recovery phrase length.
const MnemonicWordCount = 12

// MnemonicEntropyBits is the entropy size for 12-word mnemonics.
const MnemonicEntropyBits = 128

// Import validation errors.
var (
	ErrWordCount = errors.New("mnemonic must have exactly 12 words")
	ErrEmptyWord = errors.New("mnemonic contains an empty word")
	ErrChecksum  = errors.New("mnemonic failed checksum validation")
)

// GenerateMnemonic creates a new 12-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// ValidateImport validates a user-supplied recovery phrase and returns its
// canonical form: exactly 12 non-empty words, lowercased, single-spaced,
// passing BIP-39 checksum validation.
func ValidateImport(candidate string) (string, error) {
	normalized := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(candidate)
	words := strings.Split(strings.TrimSpace(normalized), " ")
	if len(words) != MnemonicWordCount {
		return "", fmt.Errorf("%w: got %d", ErrWordCount, len(words))
	}
	for i, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			return "", ErrEmptyWord
		}
		words[i] = strings.ToLower(w)
	}

	phrase := strings.Join(words, " ")
	if !bip39.IsMnemonicValid(phrase) {
		return "", ErrChecksum
	}
	return phrase, nil
}
