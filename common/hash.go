package common

import (
	"encoding/hex"
	"fmt"
)

// TxHashLen is the length of a transaction hash in bytes.
const TxHashLen = 32

// HashPrefix is the textual prefix of hash values.
const HashPrefix = "0x"

// TxHash identifies a transaction. The zero value marks "no hash" in
// serialized records.
type TxHash [TxHashLen]byte

// ParseTxHash decodes the textual hash form: "0x" followed by exactly
// 64 lowercase hex characters.
func ParseTxHash(s string) (TxHash, error) {
	if len(s) != 2+2*TxHashLen || s[:2] != HashPrefix {
		return TxHash{}, fmt.Errorf("%w: tx hash %q has invalid form", ErrInvalidParameter, s)
	}

	body, err := decodeLowerHex(s[2:])
	if err != nil {
		return TxHash{}, fmt.Errorf("%w: tx hash %q: %v", ErrInvalidParameter, s, err)
	}

	var h TxHash
	copy(h[:], body)
	return h, nil
}

// TxHashFromBytes decodes the 32-byte binary hash form.
func TxHashFromBytes(b []byte) (TxHash, error) {
	if len(b) != TxHashLen {
		return TxHash{}, fmt.Errorf("%w: binary tx hash has length %d, want %d",
			ErrInvalidParameter, len(b), TxHashLen)
	}
	var h TxHash
	copy(h[:], b)
	return h, nil
}

// IsZero reports whether the hash is the all-zero "no hash" value.
func (h TxHash) IsZero() bool { return h == TxHash{} }

// Bytes returns the 32-byte binary form.
func (h TxHash) Bytes() []byte {
	out := make([]byte, TxHashLen)
	copy(out, h[:])
	return out
}

// String returns the textual form with the "0x" prefix.
func (h TxHash) String() string {
	return HashPrefix + hex.EncodeToString(h[:])
}
