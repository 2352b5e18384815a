package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/secrethandler/secrethandler/core/rawdb"
	"github.com/secrethandler/secrethandler/core/state"
	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/crypto"
	"github.com/secrethandler/secrethandler/log"
	"github.com/secrethandler/secrethandler/metrics"
	"github.com/secrethandler/secrethandler/secrethandler"
)

// Ledger method names recorded in receipts.
const (
	MethodCommitSecret = "commitSecret"
	MethodRevealSecret = "revealSecret"
	MethodPause        = "pause"
	MethodUnpause      = "unpause"
)

// Ledger is the execution environment of one secret handler deployment.
// It applies calls one at a time, supplies the caller and the block height,
// and records a receipt with the emitted logs for every call.
//
// Block 0 holds the deployment. Calls execute in the pending block
// head+1. With auto-mine every call seals its own block; otherwise calls
// accumulate in the pending block until Mine.
type Ledger struct {
	mu       sync.RWMutex
	db       rawdb.Database
	handler  *secrethandler.SecretHandler
	autoMine bool

	head    uint64           // last sealed block
	pending []*types.Receipt // receipts of block head+1

	log *log.Logger
}

// Deploy creates a fresh deployment owned by owner in db. The deployment
// address is derived from the owner as a contract creation with nonce 0.
func Deploy(db rawdb.Database, owner types.Address, chainID *uint256.Int, autoMine bool) (*Ledger, error) {
	contract := crypto.CreateAddress(owner, 0)
	batch := db.NewBatch()
	store, err := state.DeployTo(db, batch, owner, contract, chainID)
	if err != nil {
		return nil, err
	}
	if err := rawdb.WriteHeadBlock(batch, 0); err != nil {
		return nil, fmt.Errorf("ledger: stage head: %w", err)
	}
	if err := batch.Write(); err != nil {
		return nil, fmt.Errorf("ledger: write deployment: %w", err)
	}
	l := newLedger(db, store, 0, nil, autoMine)
	metrics.OpenSecrets.Set(0)
	l.log.Info("Deployed secret handler", "contract", contract, "owner", owner, "chainId", store.ChainID().Dec())
	return l, nil
}

// Open loads the deployment stored in db, including any pending block.
func Open(db rawdb.Database, autoMine bool) (*Ledger, error) {
	store, err := state.Open(db)
	if err != nil {
		return nil, err
	}
	head, err := rawdb.ReadHeadBlock(db)
	if errors.Is(err, rawdb.ErrNotFound) {
		head = 0
	} else if err != nil {
		return nil, fmt.Errorf("ledger: read head: %w", err)
	}
	pending, err := rawdb.ReadReceipts(db, head+1)
	if err != nil {
		return nil, fmt.Errorf("ledger: read pending block: %w", err)
	}
	open, err := store.Secrets()
	if err != nil {
		return nil, fmt.Errorf("ledger: count open secrets: %w", err)
	}
	l := newLedger(db, store, head, pending, autoMine)
	metrics.OpenSecrets.Set(int64(len(open)))
	l.log.Debug("Opened ledger", "contract", store.Contract(), "head", head, "pending", len(pending))
	return l, nil
}

func newLedger(db rawdb.Database, store *state.SecretStore, head uint64, pending []*types.Receipt, autoMine bool) *Ledger {
	metrics.ChainHeight.Set(int64(head))
	return &Ledger{
		db:       db,
		handler:  secrethandler.New(store),
		autoMine: autoMine,
		head:     head,
		pending:  pending,
		log:      log.Default().Module("ledger"),
	}
}

// CommitSecret applies a commitSecret call by from. It returns the new
// secret id and the receipt. A rejected call returns its receipt together
// with the *secrethandler.RevertError.
func (l *Ledger) CommitSecret(from types.Address, hashedSecret types.Hash, party2 types.Address, r, s types.Hash, v uint8) (uint64, *types.Receipt, error) {
	var id uint64
	receipt, err := l.apply(MethodCommitSecret, from, func(c *secrethandler.Call) error {
		var err error
		id, err = l.handler.CommitSecret(c, hashedSecret, party2, r, s, v)
		return err
	})
	if receipt == nil || !receipt.Succeeded() {
		id = 0
	}
	return id, receipt, err
}

// RevealSecret applies a revealSecret call by from.
func (l *Ledger) RevealSecret(from types.Address, message, salt types.Hash, id uint64) (*types.Receipt, error) {
	return l.apply(MethodRevealSecret, from, func(c *secrethandler.Call) error {
		return l.handler.RevealSecret(c, message, salt, id)
	})
}

// Pause applies a pause call by from.
func (l *Ledger) Pause(from types.Address) (*types.Receipt, error) {
	return l.apply(MethodPause, from, l.handler.Pause)
}

// Unpause applies an unpause call by from.
func (l *Ledger) Unpause(from types.Address) (*types.Receipt, error) {
	return l.apply(MethodUnpause, from, l.handler.Unpause)
}

// apply runs fn in the pending block and records its receipt. The call's
// state changes, the receipts and the head are committed in one batch, so
// a storage failure aborts the call without a receipt and without effect.
func (l *Ledger) apply(method string, from types.Address, fn func(*secrethandler.Call) error) (*types.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	number := l.head + 1
	batch := l.db.NewBatch()
	call := secrethandler.NewStagedCall(from, number, batch)
	callErr := fn(call)

	var rev *secrethandler.RevertError
	if callErr != nil && !errors.As(callErr, &rev) {
		l.log.Error("Call failed", "method", method, "from", from, "err", callErr)
		return nil, fmt.Errorf("ledger: %s: %w", method, callErr)
	}

	receipt := &types.Receipt{
		Method:      method,
		From:        from,
		BlockNumber: number,
		Index:       uint(len(l.pending)),
	}
	if rev != nil {
		batch.Reset()
		receipt.Status = types.ReceiptStatusFailed
		receipt.RevertData = rev.RevertData()
	} else {
		receipt.Status = types.ReceiptStatusSuccessful
		receipt.Logs = call.Logs()
		next := l.pendingLogCount()
		for i, lg := range receipt.Logs {
			lg.Index = next + uint(i)
		}
	}

	pending := append(l.pending[:len(l.pending):len(l.pending)], receipt)
	if err := rawdb.WriteReceipts(batch, number, pending); err != nil {
		return nil, err
	}
	if l.autoMine {
		if err := rawdb.WriteHeadBlock(batch, number); err != nil {
			return nil, err
		}
	}
	if err := batch.Write(); err != nil {
		return nil, fmt.Errorf("ledger: write block %d: %w", number, err)
	}
	call.Committed()
	metrics.CallsApplied.Inc()

	if l.autoMine {
		l.seal(number)
	} else {
		l.pending = pending
	}
	l.log.Debug("Applied call", "method", method, "from", from, "block", number, "status", receipt.Status)
	return receipt, callErr
}

func (l *Ledger) pendingLogCount() uint {
	var n uint
	for _, r := range l.pending {
		n += uint(len(r.Logs))
	}
	return n
}

func (l *Ledger) seal(number uint64) {
	l.head = number
	l.pending = nil
	metrics.ChainHeight.Set(int64(number))
	l.log.Debug("Sealed block", "number", number)
}

// Mine seals the pending block, even if it holds no calls, and returns its
// number. In auto-mine mode this produces an empty block.
func (l *Ledger) Mine() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	number := l.head + 1
	if err := rawdb.WriteHeadBlock(l.db, number); err != nil {
		return 0, fmt.Errorf("ledger: seal block %d: %w", number, err)
	}
	calls := len(l.pending)
	l.seal(number)
	l.log.Info("Mined block", "number", number, "calls", calls)
	return number, nil
}

// AutoMine reports whether every call seals its own block.
func (l *Ledger) AutoMine() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.autoMine
}

// SetAutoMine switches auto-mining. Enabling it does not seal a block that
// is already pending.
func (l *Ledger) SetAutoMine(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.autoMine = on
}

// Head returns the number of the last sealed block.
func (l *Ledger) Head() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.head
}

// Pending returns the receipts of the pending block.
func (l *Ledger) Pending() []*types.Receipt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*types.Receipt(nil), l.pending...)
}

// Receipts returns the receipts of a sealed block.
func (l *Ledger) Receipts(number uint64) ([]*types.Receipt, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if number > l.head {
		return nil, fmt.Errorf("ledger: block %d not sealed (head %d)", number, l.head)
	}
	return rawdb.ReadReceipts(l.db, number)
}

// Logs returns the logs of sealed blocks that match filter, in block order.
// A nil filter matches every log.
func (l *Ledger) Logs(filter *types.LogFilter) ([]*types.Log, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	from, to := uint64(1), l.head
	if filter != nil {
		if filter.FromBlock > from {
			from = filter.FromBlock
		}
		if filter.ToBlock > 0 && filter.ToBlock < to {
			to = filter.ToBlock
		}
	}
	var logs []*types.Log
	for n := from; n <= to; n++ {
		receipts, err := rawdb.ReadReceipts(l.db, n)
		if err != nil {
			return nil, err
		}
		for _, r := range receipts {
			logs = append(logs, r.Logs...)
		}
	}
	return types.FilterLogs(logs, filter), nil
}

// HashSecret computes a commitment digest. It touches no state.
func (l *Ledger) HashSecret(message, salt types.Hash) (types.Hash, error) {
	return secrethandler.HashSecret(message, salt)
}

// NextSecretID returns the id the next commitment will receive.
func (l *Ledger) NextSecretID() (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handler.NextSecretID()
}

// Paused reports whether commits and reveals are suspended.
func (l *Ledger) Paused() (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handler.Paused()
}

// Secret returns the record under id; the zero record if none is live.
func (l *Ledger) Secret(id uint64) (types.Secret, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handler.Secret(id)
}

// Owner returns the deployment owner.
func (l *Ledger) Owner() types.Address { return l.handler.Owner() }

// Domain returns the signing domain of the deployment.
func (l *Ledger) Domain() secrethandler.Domain { return l.handler.Domain() }
