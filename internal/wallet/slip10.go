package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
)

// SLIP-10 ed25519 derivation. Ed25519 keys admit only hardened child
// derivation, so every path segment is derived hardened regardless of how
// the template spells it.
const (
	slip10Curve    = "ed25519 seed"
	hardenedOffset = uint32(0x80000000)
)

// slip10Key holds a SLIP-10 ed25519 key pair (private key seed + chain code).
type slip10Key struct {
	key       []byte // 32 bytes, raw ed25519 seed
	chainCode []byte // 32 bytes
}

// slip10MasterKey generates the SLIP-10 master key from a BIP-39 seed:
// HMAC-SHA512(Key="ed25519 seed", Data=seed).
func slip10MasterKey(seed []byte) slip10Key {
	mac := hmac.New(sha512.New, []byte(slip10Curve))
	mac.Write(seed)
	sum := mac.Sum(nil)
	return slip10Key{key: sum[:32], chainCode: sum[32:]}
}

// slip10DeriveChild performs SLIP-10 hardened child key derivation.
// data = 0x00 || parent_key (32 bytes) || index (4 bytes big-endian)
func slip10DeriveChild(parent slip10Key, index uint32) slip10Key {
	data := make([]byte, 0, 37) // 1 + 32 + 4
	data = append(data, 0x00)
	data = append(data, parent.key...)

	var indexBytes [4]byte
	binary.BigEndian.PutUint32(indexBytes[:], index|hardenedOffset)
	data = append(data, indexBytes[:]...)

	mac := hmac.New(sha512.New, parent.chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)

	return slip10Key{key: sum[:32], chainCode: sum[32:]}
}

// slip10DerivePath walks the segments from the master key. Segment values
// are the raw path numbers; the hardened offset is applied internally.
func slip10DerivePath(seed []byte, segments ...uint32) slip10Key {
	current := slip10MasterKey(seed)
	for _, seg := range segments {
		current = slip10DeriveChild(current, seg)
	}
	return current
}
