package signer

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/crypto"
	"github.com/secrethandler/secrethandler/secrethandler"
)

const testKeyHex = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

var (
	testSigner   = types.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	testParty1   = types.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	testContract = types.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
)

func testDomain() secrethandler.Domain {
	return secrethandler.NewDomain(uint256.NewInt(31337), testContract)
}

func TestHashMatchesDomainHash(t *testing.T) {
	d := testDomain()
	s := Commitment(7, crypto.Keccak256Hash([]byte("commitment")), testParty1, testSigner)

	got, err := Hash(NewTypedData(d, s))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if want := d.TypedDataHash(s); got != want {
		t.Errorf("Hash = %s, want %s", got, want)
	}
}

func TestHashCoversEveryField(t *testing.T) {
	d := testDomain()
	base := Commitment(1, crypto.Keccak256Hash([]byte("m")), testParty1, testSigner)
	baseHash, err := Hash(NewTypedData(d, base))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	variants := map[string]types.Secret{
		"id":          {ID: 2, Message: base.Message, Party1: base.Party1, Party2: base.Party2},
		"message":     {ID: 1, Message: crypto.Keccak256Hash([]byte("n")), Party1: base.Party1, Party2: base.Party2},
		"blockNumber": {ID: 1, Message: base.Message, BlockNumber: 5, Party1: base.Party1, Party2: base.Party2},
		"party1":      {ID: 1, Message: base.Message, Party1: testContract, Party2: base.Party2},
		"party2":      {ID: 1, Message: base.Message, Party1: base.Party1, Party2: testContract},
	}
	for field, s := range variants {
		h, err := Hash(NewTypedData(d, s))
		if err != nil {
			t.Fatalf("%s: Hash: %v", field, err)
		}
		if h == baseHash {
			t.Errorf("changing %s did not change the digest", field)
		}
	}

	other := secrethandler.NewDomain(uint256.NewInt(1), testContract)
	h, err := Hash(NewTypedData(other, base))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h == baseHash {
		t.Error("changing the chain id did not change the digest")
	}
}

func TestSignSecretRecovers(t *testing.T) {
	key, err := crypto.HexToKey(testKeyHex)
	if err != nil {
		t.Fatalf("HexToKey: %v", err)
	}
	if addr := crypto.PubkeyToAddress(key.PublicKey); addr != testSigner {
		t.Fatalf("key address = %s, want %s", addr, testSigner)
	}

	d := testDomain()
	s := Commitment(1, crypto.Keccak256Hash([]byte("commitment")), testParty1, testSigner)
	sig, err := SignSecret(key, d, s)
	if err != nil {
		t.Fatalf("SignSecret: %v", err)
	}
	if sig.V != 27 && sig.V != 28 {
		t.Errorf("V = %d, want 27 or 28", sig.V)
	}
	got, err := secrethandler.RecoverSigner(d, s, sig.R, sig.S, sig.V)
	if err != nil {
		t.Fatalf("RecoverSigner: %v", err)
	}
	if got != testSigner {
		t.Errorf("RecoverSigner = %s, want %s", got, testSigner)
	}
}

func TestNewTypedDataMessage(t *testing.T) {
	s := Commitment(3, crypto.Keccak256Hash([]byte("m")), testParty1, testSigner)
	td := NewTypedData(testDomain(), s)

	if td.PrimaryType != "Secret" {
		t.Errorf("PrimaryType = %q, want Secret", td.PrimaryType)
	}
	if td.Domain.Name != "SecretHandler" || td.Domain.Version != "1" {
		t.Errorf("domain = %s/%s, want SecretHandler/1", td.Domain.Name, td.Domain.Version)
	}
	if td.Message["id"] != "3" || td.Message["blockNumber"] != "0" {
		t.Errorf("message id/blockNumber = %v/%v, want 3/0", td.Message["id"], td.Message["blockNumber"])
	}
	if td.Message["party2"] != testSigner.Hex() {
		t.Errorf("party2 = %v, want %s", td.Message["party2"], testSigner.Hex())
	}
}
