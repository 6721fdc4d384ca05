package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// AddressKind distinguishes the two disjoint address subtypes.
type AddressKind byte

const (
	// EOAKind marks an externally-owned account address.
	EOAKind AddressKind = 0x00
	// ContractKind marks a contract (SCORE) address.
	ContractKind AddressKind = 0x01
)

const (
	// AddressBodyLen is the length of the address identifier in bytes.
	AddressBodyLen = 20
	// AddressLen is the length of the full binary address form
	// (kind tag + identifier).
	AddressLen = 1 + AddressBodyLen

	// EOAPrefix is the textual prefix of an externally-owned account address.
	EOAPrefix = "hx"
	// ContractPrefix is the textual prefix of a contract address.
	ContractPrefix = "cx"
)

// Address is an immutable chain account identifier. The zero value is not a
// valid address; use ParseAddress or one of the constructors.
type Address struct {
	kind AddressKind
	body [AddressBodyLen]byte
}

// Well-known contract addresses.
var (
	// ZeroScoreAddress is the installation target of new SCOREs.
	ZeroScoreAddress = mustAddress(ContractPrefix + "0000000000000000000000000000000000000000")
	// GovernanceAddress is the address of the built-in governance SCORE.
	GovernanceAddress = mustAddress(ContractPrefix + "0000000000000000000000000000000000000001")
)

// NewEOAAddress constructs an externally-owned account address from a raw
// 20-byte identifier.
func NewEOAAddress(body [AddressBodyLen]byte) Address {
	return Address{kind: EOAKind, body: body}
}

// NewContractAddress constructs a contract address from a raw 20-byte
// identifier.
func NewContractAddress(body [AddressBodyLen]byte) Address {
	return Address{kind: ContractKind, body: body}
}

// ParseAddress decodes the textual address form: a two-letter kind prefix
// followed by exactly 40 lowercase hex characters.
func ParseAddress(s string) (Address, error) {
	if len(s) != 2+2*AddressBodyLen {
		return Address{}, fmt.Errorf("%w: address %q has invalid length", ErrInvalidParameter, s)
	}

	var kind AddressKind
	switch s[:2] {
	case EOAPrefix:
		kind = EOAKind
	case ContractPrefix:
		kind = ContractKind
	default:
		return Address{}, fmt.Errorf("%w: address %q has unknown prefix", ErrInvalidParameter, s)
	}

	body, err := decodeLowerHex(s[2:])
	if err != nil {
		return Address{}, fmt.Errorf("%w: address %q: %v", ErrInvalidParameter, s, err)
	}

	var a Address
	a.kind = kind
	copy(a.body[:], body)
	return a, nil
}

// ParseEOAAddress is ParseAddress restricted to externally-owned accounts.
func ParseEOAAddress(s string) (Address, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return Address{}, err
	}
	if !a.IsEOA() {
		return Address{}, fmt.Errorf("%w: %q is not an EOA address", ErrInvalidParameter, s)
	}
	return a, nil
}

// ParseContractAddress is ParseAddress restricted to contract addresses.
func ParseContractAddress(s string) (Address, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return Address{}, err
	}
	if !a.IsContract() {
		return Address{}, fmt.Errorf("%w: %q is not a contract address", ErrInvalidParameter, s)
	}
	return a, nil
}

// AddressFromBytes decodes the 21-byte binary address form produced by Bytes.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressLen {
		return Address{}, fmt.Errorf("%w: binary address has length %d, want %d",
			ErrInvalidParameter, len(b), AddressLen)
	}
	kind := AddressKind(b[0])
	if kind != EOAKind && kind != ContractKind {
		return Address{}, fmt.Errorf("%w: unknown binary address tag %#x", ErrInvalidParameter, b[0])
	}

	var a Address
	a.kind = kind
	copy(a.body[:], b[1:])
	return a, nil
}

// IsEOA reports whether the address belongs to an externally-owned account.
func (a Address) IsEOA() bool { return a.kind == EOAKind }

// IsContract reports whether the address belongs to a contract.
func (a Address) IsContract() bool { return a.kind == ContractKind }

// Equals reports whether two addresses are the same identity. Addresses are
// compared by equality only; there is no meaningful ordering.
func (a Address) Equals(b Address) bool {
	return a.kind == b.kind && a.body == b.body
}

// Bytes returns the 21-byte binary form: kind tag followed by the identifier.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLen)
	out[0] = byte(a.kind)
	copy(out[1:], a.body[:])
	return out
}

// String returns the textual form with the kind prefix.
func (a Address) String() string {
	prefix := EOAPrefix
	if a.kind == ContractKind {
		prefix = ContractPrefix
	}
	return prefix + hex.EncodeToString(a.body[:])
}

func mustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// decodeLowerHex decodes s rejecting uppercase digits, so that every value
// has exactly one accepted textual encoding.
func decodeLowerHex(s string) ([]byte, error) {
	if bytes.ContainsAny([]byte(s), "ABCDEF") {
		return nil, fmt.Errorf("uppercase hex digit")
	}
	return hex.DecodeString(s)
}
