package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/secrethandler/secrethandler/core/types"
)

// SignatureLength is the length of a compact [R || S || V] signature.
const SignatureLength = 65

var (
	// secp256k1N is the order of the secp256k1 curve.
	secp256k1N = gethcrypto.S256().Params().N

	// secp256k1halfN is half the order, the upper bound for non-malleable S.
	secp256k1halfN = new(big.Int).Rsh(secp256k1N, 1)
)

// GenerateKey generates a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return gethcrypto.GenerateKey()
}

// HexToKey parses a hex-encoded secp256k1 private key, with or without 0x.
func HexToKey(s string) (*ecdsa.PrivateKey, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	key, err := gethcrypto.HexToECDSA(s)
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid private key: %w", err)
	}
	return key, nil
}

// Sign calculates an ECDSA signature over a 32-byte digest. The result is
// [R || S || V] with V the raw recovery id (0 or 1) and S in the lower half
// of the curve order.
func Sign(hash []byte, prv *ecdsa.PrivateKey) ([]byte, error) {
	if len(hash) != 32 {
		return nil, errors.New("crypto: hash must be 32 bytes")
	}
	return gethcrypto.Sign(hash, prv)
}

// SigToPub recovers the public key from a digest and [R || S || V] signature.
func SigToPub(hash, sig []byte) (*ecdsa.PublicKey, error) {
	if len(sig) != SignatureLength {
		return nil, errors.New("crypto: signature must be 65 bytes [R || S || V]")
	}
	if len(hash) != 32 {
		return nil, errors.New("crypto: hash must be 32 bytes")
	}
	return gethcrypto.SigToPub(hash, sig)
}

// PubkeyToAddress derives the account address from a public key:
// Keccak256(pubkey[1:])[12:].
func PubkeyToAddress(p ecdsa.PublicKey) types.Address {
	return types.Address(gethcrypto.PubkeyToAddress(p))
}

// CreateAddress returns the address of the deployment created by deployer
// with the given account nonce.
func CreateAddress(deployer types.Address, nonce uint64) types.Address {
	return types.Address(gethcrypto.CreateAddress(common.Address(deployer), nonce))
}
