package secrethandler

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/secrethandler/secrethandler/crypto"
)

// RevertError is a protocol rejection. Name is a stable identifier; Reason
// is the revert string recorded in receipts.
type RevertError struct {
	Name   string
	Reason string
}

func (e *RevertError) Error() string { return e.Reason }

// RevertData ABI-encodes the reason as Error(string).
func (e *RevertError) RevertData() []byte {
	packed, err := revertArgs.Pack(e.Reason)
	if err != nil {
		// A string argument always packs.
		panic(err)
	}
	return append(append([]byte{}, revertSelector...), packed...)
}

// Rejections raised by the handler. Callers compare with errors.Is.
var (
	ErrInvalidAddress         = &RevertError{"InvalidAddress", "Invalid address"}
	ErrInvalidSalt            = &RevertError{"InvalidSalt", "Invalid salt"}
	ErrInvalidSecret          = &RevertError{"InvalidSecret", "Invalid secret"}
	ErrInvalidSecretID        = &RevertError{"InvalidSecretId", "Invalid secret id"}
	ErrSignerMismatch         = &RevertError{"SignerMismatch", "Signer and signature do not match"}
	ErrECDSAInvalidSignature  = &RevertError{"ECDSAInvalidSignature", "ECDSA: invalid signature"}
	ErrECDSAInvalidSignatureS = &RevertError{"ECDSAInvalidSignatureS", "ECDSA: invalid signature 's' value"}
	ErrCallerNotParty         = &RevertError{"CallerNotParty", "Caller is not a party to the secret"}
	ErrNotOwner               = &RevertError{"NotOwner", "Ownable: caller is not the owner"}
	ErrSecretsMismatch        = &RevertError{"SecretsMismatch", "Secrets do not match"}
	ErrPaused                 = &RevertError{"Paused", "Pausable: paused"}
	ErrNotPaused              = &RevertError{"NotPaused", "Pausable: not paused"}
	ErrAlreadyPaused          = &RevertError{"AlreadyPaused", "Pausable: already paused"}
)

var allReverts = []*RevertError{
	ErrInvalidAddress, ErrInvalidSalt, ErrInvalidSecret, ErrInvalidSecretID,
	ErrSignerMismatch, ErrECDSAInvalidSignature, ErrECDSAInvalidSignatureS,
	ErrCallerNotParty, ErrNotOwner, ErrSecretsMismatch,
	ErrPaused, ErrNotPaused, ErrAlreadyPaused,
}

var (
	revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]
	revertArgs     = abi.Arguments{{Type: mustType("string")}}
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// LookupRevert returns the rejection with the given reason string.
func LookupRevert(reason string) (*RevertError, bool) {
	for _, r := range allReverts {
		if r.Reason == reason {
			return r, true
		}
	}
	return nil, false
}

// DecodeRevert decodes Error(string) revert data. Known reasons map back to
// their sentinel; unknown reasons yield a RevertError named "Unknown".
func DecodeRevert(data []byte) (*RevertError, error) {
	reason, err := abi.UnpackRevert(data)
	if err != nil {
		return nil, fmt.Errorf("secrethandler: decode revert: %w", err)
	}
	if r, ok := LookupRevert(reason); ok {
		return r, nil
	}
	return &RevertError{Name: "Unknown", Reason: reason}, nil
}

// IsRevert reports whether err is a protocol rejection, as opposed to an
// infrastructure failure.
func IsRevert(err error) bool {
	var rev *RevertError
	return errors.As(err, &rev)
}
