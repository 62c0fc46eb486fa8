package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseAmount converts a decimal string in native units (SOL, ETH, BTC) to
// atomic units (lamports, wei, satoshi) without float precision loss.
// Fractional digits beyond the network's precision are truncated (floored).
func (p *Params) ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid decimal format: %q", s)
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid decimal format: %q", s)
	}
	if whole == "" {
		whole = "0"
	}

	// Pad or truncate the fractional part to exactly Decimals digits.
	if len(frac) < p.Decimals {
		frac += strings.Repeat("0", p.Decimals-len(frac))
	} else if len(frac) > p.Decimals {
		frac = frac[:p.Decimals]
	}

	combined := whole + frac
	n, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

// FormatAmount converts atomic units to a decimal string in native units by
// inserting the decimal point. Example: 24981836 lamports -> "0.024981836".
func (p *Params) FormatAmount(atomic *big.Int) string {
	if atomic == nil {
		return "0"
	}
	neg := atomic.Sign() < 0
	s := new(big.Int).Abs(atomic).String()

	for len(s) <= p.Decimals {
		s = "0" + s
	}

	pos := len(s) - p.Decimals
	out := s[:pos]
	if p.Decimals > 0 {
		out += "." + s[pos:]
	}
	if neg {
		out = "-" + out
	}
	return out
}
