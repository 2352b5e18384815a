// Package secrethandler implements a two-party commit-reveal protocol.
//
// One party commits to keccak256(message || salt) together with the
// counterparty's EIP-712 signature over the commitment; later either party
// reveals the preimage, which is checked against the stored digest before
// the record is tombstoned. An owner may pause both operations.
//
// Each record moves Empty -> Committed -> Empty and ids are never reused.
// Every check of a call completes before the first write, and a call's
// writes land in one batch, so a rejected call changes nothing. The handler
// holds no locks; callers serialize calls (see core.Ledger).
package secrethandler

import (
	"github.com/secrethandler/secrethandler/core/rawdb"
	"github.com/secrethandler/secrethandler/core/state"
	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/log"
	"github.com/secrethandler/secrethandler/metrics"
)

// SecretHandler is the commit-reveal state machine of one deployment.
type SecretHandler struct {
	store  *state.SecretStore
	domain Domain
	log    *log.Logger
}

// New returns the handler backed by store.
func New(store *state.SecretStore) *SecretHandler {
	return &SecretHandler{
		store:  store,
		domain: NewDomain(store.ChainID(), store.Contract()),
		log:    log.Default().Module("secrethandler"),
	}
}

// Domain returns the signing domain of the deployment.
func (h *SecretHandler) Domain() Domain { return h.domain }

// Owner returns the identity allowed to pause and unpause.
func (h *SecretHandler) Owner() types.Address { return h.store.Owner() }

// NextSecretID returns the id the next commitment will receive.
func (h *SecretHandler) NextSecretID() (uint64, error) { return h.store.NextSecretID() }

// Paused reports whether commits and reveals are suspended.
func (h *SecretHandler) Paused() (bool, error) { return h.store.Paused() }

// Secret returns the record under id; the zero record if none is live.
func (h *SecretHandler) Secret(id uint64) (types.Secret, error) { return h.store.Secret(id) }

// CommitSecret stores hashedSecret as a new record shared by the caller and
// party2. (r, s, v) must be party2's signature over the record as it will
// be stored, with blockNumber zero. It returns the id of the new record.
func (h *SecretHandler) CommitSecret(call *Call, hashedSecret types.Hash, party2 types.Address, r, s types.Hash, v uint8) (uint64, error) {
	if err := call.validate(); err != nil {
		return 0, err
	}
	if err := h.whenNotPaused(); err != nil {
		return 0, h.reject("commit", call, err)
	}
	if party2.IsZero() {
		return 0, h.reject("commit", call, ErrInvalidAddress)
	}
	if hashedSecret.IsZero() {
		return 0, h.reject("commit", call, ErrInvalidSecret)
	}
	id, err := h.store.NextSecretID()
	if err != nil {
		return 0, err
	}
	rec := types.Secret{
		ID:      id,
		Message: hashedSecret,
		Party1:  call.Caller,
		Party2:  party2,
	}
	signer, err := RecoverSigner(h.domain, rec, r, s, v)
	if err != nil {
		return 0, h.reject("commit", call, err)
	}
	if signer != party2 {
		return 0, h.reject("commit", call, ErrSignerMismatch)
	}

	rec.BlockNumber = call.BlockNumber
	ev, err := newSecretCommittedLog(h.store.Contract(), rec)
	if err != nil {
		return 0, err
	}
	if err := h.write(call, func(w rawdb.KeyValueWriter) error { return h.store.PutSecret(w, rec) }); err != nil {
		return 0, err
	}
	call.emit(ev)
	call.afterCommit(func() {
		metrics.SecretsCommitted.Inc()
		metrics.OpenSecrets.Inc()
	})
	h.log.Debug("Secret committed", "id", id, "party1", rec.Party1, "party2", rec.Party2, "block", rec.BlockNumber)
	return id, nil
}

// RevealSecret discloses the preimage of record id and tombstones it. Only
// the two parties of the record may reveal.
func (h *SecretHandler) RevealSecret(call *Call, message, salt types.Hash, id uint64) error {
	if err := call.validate(); err != nil {
		return err
	}
	if err := h.whenNotPaused(); err != nil {
		return h.reject("reveal", call, err)
	}
	rec, err := h.store.Secret(id)
	if err != nil {
		return err
	}
	if rec.IsEmpty() {
		return h.reject("reveal", call, ErrInvalidSecretID)
	}
	if !rec.HasParty(call.Caller) {
		return h.reject("reveal", call, ErrCallerNotParty)
	}
	digest, err := HashSecret(message, salt)
	if err != nil {
		return h.reject("reveal", call, err)
	}
	if digest != rec.Message {
		return h.reject("reveal", call, ErrSecretsMismatch)
	}

	ev, err := newSecretRevealedLog(h.store.Contract(), id, message, call.Caller)
	if err != nil {
		return err
	}
	if err := h.write(call, func(w rawdb.KeyValueWriter) error { return h.store.Tombstone(w, id) }); err != nil {
		return err
	}
	call.emit(ev)
	call.afterCommit(func() {
		metrics.SecretsRevealed.Inc()
		metrics.OpenSecrets.Dec()
	})
	h.log.Debug("Secret revealed", "id", id, "revealer", call.Caller, "committed", rec.BlockNumber, "block", call.BlockNumber)
	return nil
}

// Pause suspends commits and reveals. Owner only.
func (h *SecretHandler) Pause(call *Call) error {
	return h.setPaused(call, true)
}

// Unpause resumes commits and reveals. Owner only.
func (h *SecretHandler) Unpause(call *Call) error {
	return h.setPaused(call, false)
}

func (h *SecretHandler) setPaused(call *Call, paused bool) error {
	if err := call.validate(); err != nil {
		return err
	}
	method := "unpause"
	if paused {
		method = "pause"
	}
	if call.Caller != h.store.Owner() {
		return h.reject(method, call, ErrNotOwner)
	}
	cur, err := h.store.Paused()
	if err != nil {
		return err
	}
	switch {
	case paused && cur:
		return h.reject(method, call, ErrAlreadyPaused)
	case !paused && !cur:
		return h.reject(method, call, ErrNotPaused)
	}

	ev, err := newPauseLog(h.store.Contract(), paused, call.Caller)
	if err != nil {
		return err
	}
	if err := h.write(call, func(w rawdb.KeyValueWriter) error { return h.store.SetPaused(w, paused) }); err != nil {
		return err
	}
	call.emit(ev)
	call.afterCommit(metrics.PauseToggles.Inc)
	h.log.Info("Pause state changed", "paused", paused, "owner", call.Caller, "block", call.BlockNumber)
	return nil
}

// write stages fn's writes into the call's writer, or commits them in a
// batch of their own when the call has none.
func (h *SecretHandler) write(call *Call, fn func(rawdb.KeyValueWriter) error) error {
	if call.writer != nil {
		return fn(call.writer)
	}
	batch := h.store.NewBatch()
	if err := fn(batch); err != nil {
		return err
	}
	return batch.Write()
}

func (h *SecretHandler) whenNotPaused() error {
	paused, err := h.store.Paused()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return nil
}

// reject records a rejection. Infrastructure errors pass through unlogged.
func (h *SecretHandler) reject(method string, call *Call, err error) error {
	if rev, ok := err.(*RevertError); ok {
		metrics.CallsReverted.Inc()
		h.log.Debug("Call reverted", "method", method, "caller", call.Caller, "reason", rev.Name)
	}
	return err
}
