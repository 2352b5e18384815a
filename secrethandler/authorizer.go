package secrethandler

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/crypto"
)

// Signing domain constants.
const (
	DomainName    = "SecretHandler"
	DomainVersion = "1"

	// SecretType is the EIP-712 encodeType of the signed struct.
	SecretType = "Secret(uint256 id,bytes32 message,uint256 blockNumber,address party1,address party2)"
)

// SecretTypeHash is keccak256(SecretType).
var SecretTypeHash = crypto.TypeHash(SecretType)

// Domain binds signatures to one deployment on one chain.
type Domain struct {
	Name              string
	Version           string
	ChainID           *uint256.Int
	VerifyingContract types.Address

	separator types.Hash
}

// NewDomain returns the signing domain of the deployment at contract on
// chain chainID, with its separator precomputed.
func NewDomain(chainID *uint256.Int, contract types.Address) Domain {
	if chainID == nil {
		chainID = new(uint256.Int)
	}
	d := Domain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainID:           chainID.Clone(),
		VerifyingContract: contract,
	}
	d.separator = crypto.DomainSeparator(d.Name, d.Version, d.ChainID, d.VerifyingContract)
	return d
}

// Separator returns the EIP-712 domain separator.
func (d Domain) Separator() types.Hash {
	if d.separator.IsZero() {
		return crypto.DomainSeparator(d.Name, d.Version, d.ChainID, d.VerifyingContract)
	}
	return d.separator
}

// HashSecretStruct returns the EIP-712 struct hash of s.
func HashSecretStruct(s types.Secret) types.Hash {
	return crypto.HashStruct(SecretTypeHash,
		crypto.Uint64Word(s.ID),
		s.Message[:],
		crypto.Uint64Word(s.BlockNumber),
		crypto.AddressWord(s.Party1),
		crypto.AddressWord(s.Party2),
	)
}

// TypedDataHash returns the digest a counterparty signs for s.
func (d Domain) TypedDataHash(s types.Secret) types.Hash {
	return crypto.TypedDataHash(d.Separator(), HashSecretStruct(s))
}

// RecoverSigner recovers the identity that signed s under d. It does not
// compare the result with any expected signer.
func RecoverSigner(d Domain, s types.Secret, r, sv types.Hash, v uint8) (types.Address, error) {
	sig := crypto.SplitSignature{R: r, S: sv, V: v}
	addr, err := crypto.RecoverAddress(d.TypedDataHash(s), sig)
	switch {
	case err == nil:
		return addr, nil
	case errors.Is(err, crypto.ErrSigRecoverMalleable):
		return types.Address{}, ErrECDSAInvalidSignatureS
	default:
		return types.Address{}, ErrECDSAInvalidSignature
	}
}
