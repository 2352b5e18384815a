package rawdb

import "encoding/binary"

// Key prefixes and singleton keys of the database schema.
var (
	// Deployment metadata, written once at deployment.
	ownerKey    = []byte("owner")    // -> 20-byte owner address
	contractKey = []byte("contract") // -> 20-byte deployment address
	chainIDKey  = []byte("chainId")  // -> 32-byte big-endian chain id

	// Handler state.
	nextSecretIDKey = []byte("nextSecretId") // -> uint64 BE
	pausedKey       = []byte("paused")       // -> 0x01, absent when unpaused
	secretPrefix    = []byte("s")            // s + id (8 bytes BE) -> secret RLP

	// Ledger.
	headBlockKey  = []byte("LastBlock") // -> uint64 BE
	receiptPrefix = []byte("r")         // r + num (8 bytes BE) -> receipts RLP
)

// encodeUint64 encodes a number as an 8-byte big-endian value.
func encodeUint64(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

// secretKey = secretPrefix + id
func secretKey(id uint64) []byte {
	return append(append([]byte{}, secretPrefix...), encodeUint64(id)...)
}

// receiptKey = receiptPrefix + num
func receiptKey(number uint64) []byte {
	return append(append([]byte{}, receiptPrefix...), encodeUint64(number)...)
}
