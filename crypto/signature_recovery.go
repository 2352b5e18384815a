// Signer recovery for split (v, r, s) ECDSA signatures, following the
// semantics of the ecRecover precompile plus the EIP-2 low-S rule:
//
//   - S in the upper half of the curve order is rejected as malleable.
//   - V must be the legacy encoding 27 or 28.
//   - R and S must lie in [1, n-1].
//   - Recovery must succeed and yield a non-zero address.
package crypto

import (
	"errors"
	"math/big"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/secrethandler/secrethandler/core/types"
)

// Errors for signature recovery operations.
var (
	ErrSigRecoverInvalidLength = errors.New("sig_recover: signature must be 65 bytes")
	ErrSigRecoverInvalidV      = errors.New("sig_recover: V must be 27 or 28")
	ErrSigRecoverInvalidRS     = errors.New("sig_recover: R and S must be in [1, n-1]")
	ErrSigRecoverMalleable     = errors.New("sig_recover: S is in upper half (malleable)")
	ErrSigRecoverFailed        = errors.New("sig_recover: public key recovery failed")
)

// SplitSignature is an ECDSA signature as submitted on the ledger: two
// 32-byte words and a legacy recovery byte.
type SplitSignature struct {
	R types.Hash
	S types.Hash
	V uint8
}

// SplitCompact splits a 65-byte [R || S || V] signature. V may be a raw
// recovery id (0/1) or already legacy encoded (27/28); the result always
// carries the legacy encoding.
func SplitCompact(sig []byte) (SplitSignature, error) {
	if len(sig) != SignatureLength {
		return SplitSignature{}, ErrSigRecoverInvalidLength
	}
	ss := SplitSignature{
		R: types.BytesToHash(sig[:32]),
		S: types.BytesToHash(sig[32:64]),
		V: sig[64],
	}
	if ss.V < 27 {
		ss.V += 27
	}
	return ss, nil
}

// Compact encodes the signature as [R || S || V] with a raw recovery id.
// It does not validate V.
func (ss SplitSignature) Compact() []byte {
	buf := make([]byte, SignatureLength)
	copy(buf[:32], ss.R[:])
	copy(buf[32:64], ss.S[:])
	buf[64] = ss.V - 27
	return buf
}

// Validate checks the components in the order the ledger does.
func (ss SplitSignature) Validate() error {
	r := new(big.Int).SetBytes(ss.R[:])
	s := new(big.Int).SetBytes(ss.S[:])
	if s.Cmp(secp256k1halfN) > 0 {
		return ErrSigRecoverMalleable
	}
	if ss.V != 27 && ss.V != 28 {
		return ErrSigRecoverInvalidV
	}
	if !gethcrypto.ValidateSignatureValues(ss.V-27, r, s, false) {
		return ErrSigRecoverInvalidRS
	}
	return nil
}

// RecoverAddress recovers the address that produced sig over hash.
func RecoverAddress(hash types.Hash, sig SplitSignature) (types.Address, error) {
	if err := sig.Validate(); err != nil {
		return types.Address{}, err
	}
	pub, err := SigToPub(hash[:], sig.Compact())
	if err != nil {
		return types.Address{}, ErrSigRecoverFailed
	}
	addr := PubkeyToAddress(*pub)
	if addr.IsZero() {
		return types.Address{}, ErrSigRecoverFailed
	}
	return addr, nil
}
