// Package chain defines the closed set of supported networks and their
// parameters. All network-specific values are hardcoded here: adding a
// network means adding a variant, not threading conditionals elsewhere.
package chain

import "fmt"

// Network identifies a supported blockchain network.
type Network string

const (
	Solana   Network = "sol"
	Ethereum Network = "eth"
	Bitcoin  Network = "btc"
)

// All lists every supported network in display order.
var All = []Network{Solana, Ethereum, Bitcoin}

// Params contains the fixed parameters for a network.
type Params struct {
	Name     string // Solana, Ethereum, Bitcoin
	Ticker   string // SOL, ETH, BTC
	Decimals int    // atomic units per native unit, as a power of ten

	// BIP-44 derivation
	CoinType uint32 // 501=SOL, 60=ETH, 0=BTC

	// pathTemplate formats the derivation path for an account index.
	pathTemplate string
}

var params = map[Network]*Params{
	Solana: {
		Name:         "Solana",
		Ticker:       "SOL",
		Decimals:     9,
		CoinType:     501,
		pathTemplate: "m/44'/501'/%d'/0'",
	},
	Ethereum: {
		Name:         "Ethereum",
		Ticker:       "ETH",
		Decimals:     18,
		CoinType:     60,
		pathTemplate: "m/44'/60'/0'/0/%d",
	},
	// The Bitcoin path mirrors the observed wallet behavior: BIP-44 coin
	// type 0 with ed25519 key material. It does not produce a spendable
	// Bitcoin address; transfer operations reject the network outright.
	Bitcoin: {
		Name:         "Bitcoin",
		Ticker:       "BTC",
		Decimals:     8,
		CoinType:     0,
		pathTemplate: "m/44'/0'/%d'/0/0",
	},
}

// IsSupported returns true for the three known networks.
func IsSupported(n Network) bool {
	_, ok := params[n]
	return ok
}

// Get returns the parameters for a network.
func Get(n Network) (*Params, error) {
	p, ok := params[n]
	if !ok {
		return nil, fmt.Errorf("unsupported network: %s", n)
	}
	return p, nil
}

// MustGet returns the parameters for a network, panicking on an unknown one.
// Only for use with the Network constants above.
func MustGet(n Network) *Params {
	p, ok := params[n]
	if !ok {
		panic("unsupported network: " + string(n))
	}
	return p
}

// DerivationPath returns the derivation path string for an account index.
func (p *Params) DerivationPath(index uint32) string {
	return fmt.Sprintf(p.pathTemplate, index)
}

// Parse converts a network identifier (short code or name, any case) to a
// Network. Returns an error for anything outside the variant set.
func Parse(s string) (Network, error) {
	switch s {
	case "sol", "SOL", "solana", "Solana":
		return Solana, nil
	case "eth", "ETH", "ethereum", "Ethereum":
		return Ethereum, nil
	case "btc", "BTC", "bitcoin", "Bitcoin":
		return Bitcoin, nil
	}
	return "", fmt.Errorf("unsupported network: %q", s)
}
