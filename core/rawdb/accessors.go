package rawdb

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/secrethandler/secrethandler/core/types"
)

// --- Deployment Accessors ---

// ReadOwner retrieves the owner fixed at deployment.
func ReadOwner(db KeyValueReader) (types.Address, error) {
	data, err := db.Get(ownerKey)
	if err != nil {
		return types.Address{}, err
	}
	return types.BytesToAddress(data), nil
}

// HasOwner reports whether a deployment owner has been written.
func HasOwner(db KeyValueReader) (bool, error) {
	return db.Has(ownerKey)
}

// WriteOwner stores the deployment owner.
func WriteOwner(db KeyValueWriter, owner types.Address) error {
	return db.Put(ownerKey, owner.Bytes())
}

// ReadContract retrieves the deployment (verifying contract) address.
func ReadContract(db KeyValueReader) (types.Address, error) {
	data, err := db.Get(contractKey)
	if err != nil {
		return types.Address{}, err
	}
	return types.BytesToAddress(data), nil
}

// WriteContract stores the deployment address.
func WriteContract(db KeyValueWriter, addr types.Address) error {
	return db.Put(contractKey, addr.Bytes())
}

// ReadChainID retrieves the chain id the deployment lives on.
func ReadChainID(db KeyValueReader) (*uint256.Int, error) {
	data, err := db.Get(chainIDKey)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(data), nil
}

// WriteChainID stores the chain id as a 32-byte word.
func WriteChainID(db KeyValueWriter, id *uint256.Int) error {
	w := id.Bytes32()
	return db.Put(chainIDKey, w[:])
}

// --- Handler State Accessors ---

// ReadNextSecretID retrieves the id the next commitment will receive.
func ReadNextSecretID(db KeyValueReader) (uint64, error) {
	data, err := db.Get(nextSecretIDKey)
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("rawdb: corrupt nextSecretId (%d bytes)", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// WriteNextSecretID stores the secret id counter.
func WriteNextSecretID(db KeyValueWriter, id uint64) error {
	return db.Put(nextSecretIDKey, encodeUint64(id))
}

// ReadPaused reports whether the pause flag is set.
func ReadPaused(db KeyValueReader) (bool, error) {
	return db.Has(pausedKey)
}

// WritePaused sets or clears the pause flag.
func WritePaused(db KeyValueWriter, paused bool) error {
	if paused {
		return db.Put(pausedKey, []byte{0x01})
	}
	return db.Delete(pausedKey)
}

// ReadSecret retrieves the record stored under id. A missing record is not
// an error: the zero (Empty) record is returned.
func ReadSecret(db KeyValueReader, id uint64) (types.Secret, error) {
	data, err := db.Get(secretKey(id))
	if errors.Is(err, ErrNotFound) {
		return types.Secret{}, nil
	}
	if err != nil {
		return types.Secret{}, err
	}
	var s types.Secret
	if err := rlp.DecodeBytes(data, &s); err != nil {
		return types.Secret{}, fmt.Errorf("rawdb: decode secret %d: %w", id, err)
	}
	return s, nil
}

// WriteSecret stores a committed record under its id.
func WriteSecret(db KeyValueWriter, s types.Secret) error {
	data, err := rlp.EncodeToBytes(&s)
	if err != nil {
		return fmt.Errorf("rawdb: encode secret %d: %w", s.ID, err)
	}
	return db.Put(secretKey(s.ID), data)
}

// DeleteSecret removes the record stored under id, leaving it Empty.
func DeleteSecret(db KeyValueWriter, id uint64) error {
	return db.Delete(secretKey(id))
}

// ReadSecrets returns every stored (committed, unrevealed) record in id order.
func ReadSecrets(db Database) ([]types.Secret, error) {
	it := db.NewIterator(secretPrefix)
	defer it.Release()

	var out []types.Secret
	for it.Next() {
		var s types.Secret
		if err := rlp.DecodeBytes(it.Value(), &s); err != nil {
			return nil, fmt.Errorf("rawdb: decode secret at %x: %w", it.Key(), err)
		}
		out = append(out, s)
	}
	return out, it.Error()
}

// --- Ledger Accessors ---

// ReadHeadBlock retrieves the number of the last sealed block.
func ReadHeadBlock(db KeyValueReader) (uint64, error) {
	data, err := db.Get(headBlockKey)
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("rawdb: corrupt head block (%d bytes)", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// WriteHeadBlock stores the number of the last sealed block.
func WriteHeadBlock(db KeyValueWriter, number uint64) error {
	return db.Put(headBlockKey, encodeUint64(number))
}

// ReadReceipts retrieves the receipts of a block. A block without stored
// receipts yields an empty slice.
func ReadReceipts(db KeyValueReader, number uint64) ([]*types.Receipt, error) {
	data, err := db.Get(receiptKey(number))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var receipts []*types.Receipt
	if err := rlp.DecodeBytes(data, &receipts); err != nil {
		return nil, fmt.Errorf("rawdb: decode receipts of block %d: %w", number, err)
	}
	return receipts, nil
}

// WriteReceipts stores the receipts of a block.
func WriteReceipts(db KeyValueWriter, number uint64, receipts []*types.Receipt) error {
	data, err := rlp.EncodeToBytes(receipts)
	if err != nil {
		return fmt.Errorf("rawdb: encode receipts of block %d: %w", number, err)
	}
	return db.Put(receiptKey(number), data)
}
