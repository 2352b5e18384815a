package secrethandler

import (
	"errors"

	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/crypto"
)

// ErrStringTooLong is returned when a string does not fit a bytes32 value
// with a terminating zero byte.
var ErrStringTooLong = errors.New("secrethandler: string longer than 31 bytes")

// HashSecret computes the commitment digest keccak256(message || salt).
// The salt is validated before the message.
func HashSecret(message, salt types.Hash) (types.Hash, error) {
	if salt.IsZero() {
		return types.Hash{}, ErrInvalidSalt
	}
	if message.IsZero() {
		return types.Hash{}, ErrInvalidSecret
	}
	return crypto.Keccak256Hash(message[:], salt[:]), nil
}

// StringToBytes32 right-pads a short UTF-8 string into a bytes32 value, the
// usual encoding of human-readable secrets.
func StringToBytes32(s string) (types.Hash, error) {
	var h types.Hash
	if len(s) > types.HashLength-1 {
		return h, ErrStringTooLong
	}
	copy(h[:], s)
	return h, nil
}

// Bytes32ToString trims the zero padding added by StringToBytes32.
func Bytes32ToString(h types.Hash) string {
	n := len(h)
	for n > 0 && h[n-1] == 0 {
		n--
	}
	return string(h[:n])
}
