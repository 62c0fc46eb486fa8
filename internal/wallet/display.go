package wallet

import "strings"

// MaskMnemonic hides the middle of a recovery phrase. The first two and
// last two words stay readable; every other word becomes asterisks of the
// same length.
func MaskMnemonic(mnemonic string) string {
	words := strings.Fields(mnemonic)
	for i, w := range words {
		if i < 2 || i >= len(words)-2 {
			continue
		}
		words[i] = strings.Repeat("*", len(w))
	}
	return strings.Join(words, " ")
}

// MaskPrivateKey shows the first and last six characters of key material,
// hiding the middle. Short values are fully masked.
func MaskPrivateKey(key string) string {
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:6] + strings.Repeat("*", len(key)-12) + key[len(key)-6:]
}
