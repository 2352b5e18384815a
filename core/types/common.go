// Package types defines the core data structures of the secret handler
// ledger: 32-byte words, 20-byte account identities, secret records,
// event logs and receipts.
package types

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	HashLength    = 32
	AddressLength = 20
)

var (
	ErrHexLength = errors.New("types: hex value has wrong length")
	ErrHexSyntax = errors.New("types: invalid hex string")
)

// Hash represents a 32-byte word: a Keccak-256 digest, a commitment, a salt
// or a raw bytes32 secret message.
type Hash [HashLength]byte

// Address represents the 20-byte identity of an account.
type Address [AddressLength]byte

// BytesToHash converts bytes to Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string to Hash. Invalid input yields a partial or
// zero hash; use ParseHash where the input is untrusted.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

// ParseHash strictly decodes a 0x-prefixed or bare 64 character hex string.
func ParseHash(s string) (Hash, error) {
	b, err := decodeStrict(s, HashLength)
	if err != nil {
		return Hash{}, err
	}
	return BytesToHash(b), nil
}

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex representation of the hash.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// SetBytes sets the hash from a byte slice, left-padding if necessary.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero returns whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// MarshalText encodes the hash as 0x-prefixed hex.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText decodes a 32-byte hex value, see ParseHash.
func (h *Hash) UnmarshalText(input []byte) error {
	parsed, err := ParseHash(string(input))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// BytesToAddress converts bytes to Address, left-padding if shorter than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to Address.
func HexToAddress(s string) Address {
	return BytesToAddress(fromHex(s))
}

// ParseAddress strictly decodes a hex address. Mixed-case input must carry a
// valid EIP-55 checksum.
func ParseAddress(s string) (Address, error) {
	b, err := decodeStrict(s, AddressLength)
	if err != nil {
		return Address{}, err
	}
	a := BytesToAddress(b)
	if body := strip0x(s); hasMixedCase(body) && a.Hex()[2:] != body {
		return Address{}, fmt.Errorf("types: bad EIP-55 checksum for %s", s)
	}
	return a, nil
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the EIP-55 checksummed hex representation of the address.
func (a Address) Hex() string { return common.Address(a).Hex() }

// SetBytes sets the address from a byte slice.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// IsZero returns whether the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// MarshalText encodes the address as checksummed hex.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.Hex()), nil }

// UnmarshalText decodes a hex address, see ParseAddress.
func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// fromHex decodes a hex string, stripping optional "0x" prefix.
func fromHex(s string) []byte {
	s = strip0x(s)
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func decodeStrict(s string, size int) ([]byte, error) {
	body := strip0x(s)
	if len(body) != 2*size {
		return nil, fmt.Errorf("%w: got %d hex chars, want %d", ErrHexLength, len(body), 2*size)
	}
	b, err := hex.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHexSyntax, err)
	}
	return b, nil
}

func strip0x(s string) string {
	if has0xPrefix(s) {
		return s[2:]
	}
	return s
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func hasMixedCase(s string) bool {
	var lower, upper bool
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'f':
			lower = true
		case c >= 'A' && c <= 'F':
			upper = true
		}
	}
	return lower && upper
}
