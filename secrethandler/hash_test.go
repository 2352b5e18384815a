package secrethandler

import (
	"errors"
	"testing"

	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/crypto"
)

func TestHashSecret(t *testing.T) {
	message, _ := StringToBytes32("this is the secret")
	salt := crypto.Keccak256Hash([]byte("salt"))

	got, err := HashSecret(message, salt)
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	want := crypto.Keccak256Hash(append(message.Bytes(), salt.Bytes()...))
	if got != want {
		t.Errorf("HashSecret = %s, want %s", got, want)
	}

	again, _ := HashSecret(message, salt)
	if again != got {
		t.Error("HashSecret is not deterministic")
	}
	otherSalt, _ := HashSecret(message, crypto.Keccak256Hash([]byte("pepper")))
	if otherSalt == got {
		t.Error("different salt produced the same digest")
	}
	swapped, _ := HashSecret(salt, message)
	if swapped == got {
		t.Error("digest does not depend on argument order")
	}
}

func TestHashSecretValidation(t *testing.T) {
	nonZero := types.HexToHash("0x01")
	tests := []struct {
		name          string
		message, salt types.Hash
		want          error
	}{
		{"zero salt", nonZero, types.Hash{}, ErrInvalidSalt},
		{"zero message", types.Hash{}, nonZero, ErrInvalidSecret},
		{"both zero reports salt", types.Hash{}, types.Hash{}, ErrInvalidSalt},
	}
	for _, tt := range tests {
		h, err := HashSecret(tt.message, tt.salt)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
		if !h.IsZero() {
			t.Errorf("%s: digest = %s, want zero", tt.name, h)
		}
	}
}

func TestStringToBytes32(t *testing.T) {
	h, err := StringToBytes32("this is the secret")
	if err != nil {
		t.Fatalf("StringToBytes32: %v", err)
	}
	if h[0] != 't' || h[17] != 't' || h[18] != 0 {
		t.Errorf("StringToBytes32 is not right padded: %x", h)
	}
	if got := Bytes32ToString(h); got != "this is the secret" {
		t.Errorf("Bytes32ToString = %q", got)
	}

	if _, err := StringToBytes32("0123456789012345678901234567890"); err != nil {
		t.Errorf("31 byte string rejected: %v", err)
	}
	if _, err := StringToBytes32("01234567890123456789012345678901"); !errors.Is(err, ErrStringTooLong) {
		t.Errorf("32 byte string: err = %v, want %v", err, ErrStringTooLong)
	}
}
