// Package signer produces the counterparty signature a commitment needs.
//
// The payload is built as go-ethereum apitypes.TypedData, the same
// structure wallets receive through eth_signTypedData_v4, so the digest
// signed here is the one any EIP-712 wallet would sign.
package signer

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/crypto"
	"github.com/secrethandler/secrethandler/secrethandler"
)

const primaryType = "Secret"

var typedDataTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	primaryType: {
		{Name: "id", Type: "uint256"},
		{Name: "message", Type: "bytes32"},
		{Name: "blockNumber", Type: "uint256"},
		{Name: "party1", Type: "address"},
		{Name: "party2", Type: "address"},
	},
}

// Commitment returns the struct party2 signs for a commitment by party1.
// id must be the handler's next secret id; blockNumber is always zero.
func Commitment(id uint64, hashedSecret types.Hash, party1, party2 types.Address) types.Secret {
	return types.Secret{ID: id, Message: hashedSecret, Party1: party1, Party2: party2}
}

// NewTypedData builds the EIP-712 payload of s under domain d.
func NewTypedData(d secrethandler.Domain, s types.Secret) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       typedDataTypes,
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              d.Name,
			Version:           d.Version,
			ChainId:           (*math.HexOrDecimal256)(d.ChainID.ToBig()),
			VerifyingContract: d.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"id":          strconv.FormatUint(s.ID, 10),
			"message":     s.Message.Hex(),
			"blockNumber": strconv.FormatUint(s.BlockNumber, 10),
			"party1":      s.Party1.Hex(),
			"party2":      s.Party2.Hex(),
		},
	}
}

// Hash returns the EIP-712 digest of td.
func Hash(td apitypes.TypedData) (types.Hash, error) {
	digest, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return types.Hash{}, fmt.Errorf("signer: hash typed data: %w", err)
	}
	return types.BytesToHash(digest), nil
}

// SignSecret signs s under d with key and returns the split signature
// with a legacy 27/28 recovery byte.
func SignSecret(key *ecdsa.PrivateKey, d secrethandler.Domain, s types.Secret) (crypto.SplitSignature, error) {
	digest, err := Hash(NewTypedData(d, s))
	if err != nil {
		return crypto.SplitSignature{}, err
	}
	sig, err := crypto.Sign(digest[:], key)
	if err != nil {
		return crypto.SplitSignature{}, fmt.Errorf("signer: sign: %w", err)
	}
	return crypto.SplitCompact(sig)
}
