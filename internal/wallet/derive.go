package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip32"

	"github.com/nexvault/nexvault/internal/chain"
)

// KeyPair is the derived key material for one account on one network,
// already encoded in the network's native form.
type KeyPair struct {
	Network    chain.Network
	Index      uint32
	Path       string
	PublicKey  string // Solana: base58; Ethereum: checksummed 0x address; Bitcoin: raw hex
	PrivateKey string // Solana/Bitcoin: hex of 64-byte ed25519 key; Ethereum: 0x-prefixed hex
}

// Derive is the path derivation function: (mnemonic, network, index) -> key
// pair. It is pure: identical inputs always produce identical key material.
func Derive(mnemonic string, network chain.Network, index uint32) (*KeyPair, error) {
	seed, err := SeedFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}

	switch network {
	case chain.Solana:
		return deriveSolana(seed, index)
	case chain.Ethereum:
		return deriveEthereum(seed, index)
	case chain.Bitcoin:
		return deriveBitcoin(seed, index)
	}
	return nil, fmt.Errorf("unsupported network: %s", network)
}

// deriveSolana derives an ed25519 key pair at m/44'/501'/{index}'/0' using
// SLIP-10 (Phantom/Solflare standard). Public key is base58, private key is
// the hex of the full 64-byte signing key.
func deriveSolana(seed []byte, index uint32) (*KeyPair, error) {
	node := slip10DerivePath(seed, 44, 501, index, 0)
	priv := ed25519.NewKeyFromSeed(node.key)
	pub := priv.Public().(ed25519.PublicKey)

	return &KeyPair{
		Network:    chain.Solana,
		Index:      index,
		Path:       chain.MustGet(chain.Solana).DerivationPath(index),
		PublicKey:  base58.Encode(pub),
		PrivateKey: hex.EncodeToString(priv),
	}, nil
}

// deriveEthereum derives a secp256k1 key at m/44'/60'/0'/0/{index} via
// BIP-32 and returns the checksummed address with a 0x-prefixed private key.
func deriveEthereum(seed []byte, index uint32) (*KeyPair, error) {
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}

	// m/44'/60'/0'/0/{index}
	segments := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + 60,
		bip32.FirstHardenedChild + 0,
		0,
		index,
	}
	node := master
	for _, seg := range segments {
		node, err = node.NewChildKey(seg)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", seg, err)
		}
	}

	privKey, err := crypto.ToECDSA(node.Key)
	if err != nil {
		return nil, fmt.Errorf("convert to ECDSA: %w", err)
	}

	return &KeyPair{
		Network:    chain.Ethereum,
		Index:      index,
		Path:       chain.MustGet(chain.Ethereum).DerivationPath(index),
		PublicKey:  crypto.PubkeyToAddress(privKey.PublicKey).Hex(),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(privKey)),
	}, nil
}

// deriveBitcoin reproduces the observed placeholder behavior: ed25519 key
// material at m/44'/0'/{index}'/0/0, every segment derived hardened (the
// only derivation ed25519 admits), output as raw hex. The result is NOT a
// valid Bitcoin address; transfer operations reject the network.
func deriveBitcoin(seed []byte, index uint32) (*KeyPair, error) {
	node := slip10DerivePath(seed, 44, 0, index, 0, 0)
	priv := ed25519.NewKeyFromSeed(node.key)
	pub := priv.Public().(ed25519.PublicKey)

	return &KeyPair{
		Network:    chain.Bitcoin,
		Index:      index,
		Path:       chain.MustGet(chain.Bitcoin).DerivationPath(index),
		PublicKey:  hex.EncodeToString(pub),
		PrivateKey: hex.EncodeToString(priv),
	}, nil
}
