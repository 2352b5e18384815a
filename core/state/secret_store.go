// Package state implements the persistent state of a secret handler
// deployment: the secret records keyed by id, the id counter, the pause
// flag and the immutable deployment metadata.
//
// SecretStore is the only writer of that state. Mutations are staged into
// a caller-supplied rawdb writer, normally a batch that the caller commits
// together with its own bookkeeping, so a failed commit leaves nothing
// behind. Reads always see committed state. The store holds no locks:
// callers are expected to serialize mutations, which the ledger does.
package state

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/secrethandler/secrethandler/core/rawdb"
	"github.com/secrethandler/secrethandler/core/types"
)

// FirstSecretID is the id handed to the first commitment of a deployment.
const FirstSecretID = 1

// Errors for secret store operations.
var (
	ErrAlreadyDeployed = errors.New("state: database already holds a deployment")
	ErrNotDeployed     = errors.New("state: database holds no deployment")
	ErrIDMismatch      = errors.New("state: record id does not match nextSecretId")
	ErrNotCommitted    = errors.New("state: record is not committed")
)

// SecretStore owns the records, counter and pause flag of one deployment.
type SecretStore struct {
	db rawdb.Database

	// Fixed at deployment.
	owner    types.Address
	contract types.Address
	chainID  *uint256.Int
}

// Deploy initialises a fresh deployment in db: the owner, the deployment
// address and chain id are written once and nextSecretId starts at 1.
func Deploy(db rawdb.Database, owner, contract types.Address, chainID *uint256.Int) (*SecretStore, error) {
	batch := db.NewBatch()
	s, err := DeployTo(db, batch, owner, contract, chainID)
	if err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, fmt.Errorf("state: write deployment: %w", err)
	}
	return s, nil
}

// DeployTo stages a fresh deployment of db into w. The returned store is
// usable once the caller has committed w.
func DeployTo(db rawdb.Database, w rawdb.KeyValueWriter, owner, contract types.Address, chainID *uint256.Int) (*SecretStore, error) {
	if ok, err := rawdb.HasOwner(db); err != nil {
		return nil, fmt.Errorf("state: probe deployment: %w", err)
	} else if ok {
		return nil, ErrAlreadyDeployed
	}
	if chainID == nil {
		chainID = new(uint256.Int)
	}
	if err := rawdb.WriteOwner(w, owner); err != nil {
		return nil, err
	}
	if err := rawdb.WriteContract(w, contract); err != nil {
		return nil, err
	}
	if err := rawdb.WriteChainID(w, chainID); err != nil {
		return nil, err
	}
	if err := rawdb.WriteNextSecretID(w, FirstSecretID); err != nil {
		return nil, err
	}
	return &SecretStore{db: db, owner: owner, contract: contract, chainID: chainID.Clone()}, nil
}

// Open loads an existing deployment from db.
func Open(db rawdb.Database) (*SecretStore, error) {
	owner, err := rawdb.ReadOwner(db)
	if errors.Is(err, rawdb.ErrNotFound) {
		return nil, ErrNotDeployed
	}
	if err != nil {
		return nil, fmt.Errorf("state: read owner: %w", err)
	}
	contract, err := rawdb.ReadContract(db)
	if err != nil {
		return nil, fmt.Errorf("state: read contract: %w", err)
	}
	chainID, err := rawdb.ReadChainID(db)
	if err != nil {
		return nil, fmt.Errorf("state: read chain id: %w", err)
	}
	return &SecretStore{db: db, owner: owner, contract: contract, chainID: chainID}, nil
}

// Owner returns the identity allowed to pause and unpause.
func (s *SecretStore) Owner() types.Address { return s.owner }

// Contract returns the deployment address, the EIP-712 verifying contract.
func (s *SecretStore) Contract() types.Address { return s.contract }

// ChainID returns a copy of the chain id of the deployment.
func (s *SecretStore) ChainID() *uint256.Int { return s.chainID.Clone() }

// NextSecretID returns the id the next successful commitment will receive.
func (s *SecretStore) NextSecretID() (uint64, error) {
	id, err := rawdb.ReadNextSecretID(s.db)
	if err != nil {
		return 0, fmt.Errorf("state: read nextSecretId: %w", err)
	}
	return id, nil
}

// Paused reports whether the pause flag is set.
func (s *SecretStore) Paused() (bool, error) {
	p, err := rawdb.ReadPaused(s.db)
	if err != nil {
		return false, fmt.Errorf("state: read paused: %w", err)
	}
	return p, nil
}

// Secret returns the record under id, or the zero record if Empty.
func (s *SecretStore) Secret(id uint64) (types.Secret, error) {
	rec, err := rawdb.ReadSecret(s.db, id)
	if err != nil {
		return types.Secret{}, fmt.Errorf("state: read secret %d: %w", id, err)
	}
	return rec, nil
}

// Secrets returns every committed record in id order.
func (s *SecretStore) Secrets() ([]types.Secret, error) {
	return rawdb.ReadSecrets(s.db)
}

// NewBatch returns a batch over the store's database for staging
// mutations.
func (s *SecretStore) NewBatch() rawdb.Batch { return s.db.NewBatch() }

// PutSecret stages a committed record into w together with the advanced
// nextSecretId. rec.ID must equal the committed nextSecretId.
func (s *SecretStore) PutSecret(w rawdb.KeyValueWriter, rec types.Secret) error {
	if !rec.IsCommitted() {
		return ErrNotCommitted
	}
	next, err := s.NextSecretID()
	if err != nil {
		return err
	}
	if rec.ID != next {
		return fmt.Errorf("%w: got %d, want %d", ErrIDMismatch, rec.ID, next)
	}
	if err := rawdb.WriteSecret(w, rec); err != nil {
		return fmt.Errorf("state: stage secret %d: %w", rec.ID, err)
	}
	if err := rawdb.WriteNextSecretID(w, next+1); err != nil {
		return fmt.Errorf("state: stage nextSecretId: %w", err)
	}
	return nil
}

// Tombstone stages the reset of the record under id to Empty. The counter
// is untouched, so the id is never handed out again.
func (s *SecretStore) Tombstone(w rawdb.KeyValueWriter, id uint64) error {
	if err := rawdb.DeleteSecret(w, id); err != nil {
		return fmt.Errorf("state: stage delete of secret %d: %w", id, err)
	}
	return nil
}

// SetPaused stages setting or clearing the pause flag.
func (s *SecretStore) SetPaused(w rawdb.KeyValueWriter, paused bool) error {
	if err := rawdb.WritePaused(w, paused); err != nil {
		return fmt.Errorf("state: stage paused: %w", err)
	}
	return nil
}
