package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/secrethandler"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitReverted     = 1 // the ledger rejected the call
	ExitCommandError = 2 // bad input, configuration or storage failure
)

// ExitError carries the exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func commandError(err error, format string, args ...any) *ExitError {
	return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf(format, args...), Err: err}
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if secrethandler.IsRevert(err) {
		return ExitReverted
	}
	return ExitCommandError
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// secretView is the printable form of a record.
type secretView struct {
	ID          uint64        `json:"id"`
	Message     types.Hash    `json:"message"`
	BlockNumber uint64        `json:"blockNumber"`
	Party1      types.Address `json:"party1"`
	Party2      types.Address `json:"party2"`
	Empty       bool          `json:"empty"`
}

func newSecretView(s types.Secret) secretView {
	return secretView{
		ID:          s.ID,
		Message:     s.Message,
		BlockNumber: s.BlockNumber,
		Party1:      s.Party1,
		Party2:      s.Party2,
		Empty:       s.IsEmpty(),
	}
}

// eventView is the printable form of a decoded log.
type eventView struct {
	Event       string         `json:"event"`
	BlockNumber uint64         `json:"blockNumber"`
	Index       uint           `json:"logIndex"`
	SecretID    uint64         `json:"secretId,omitempty"`
	Message     *types.Hash    `json:"message,omitempty"`
	Text        string         `json:"text,omitempty"`
	Account     *types.Address `json:"account,omitempty"`
	Secret      *secretView    `json:"secret,omitempty"`
}

func newEventView(l *types.Log) (eventView, error) {
	name, err := secrethandler.EventName(l)
	if err != nil {
		return eventView{}, err
	}
	v := eventView{Event: name, BlockNumber: l.BlockNumber, Index: l.Index}
	switch name {
	case secrethandler.EventSecretCommitted:
		ev, err := secrethandler.ParseSecretCommitted(l)
		if err != nil {
			return v, err
		}
		sv := newSecretView(ev.Secret)
		v.SecretID, v.Account, v.Secret = ev.SecretID, &ev.Committer, &sv
	case secrethandler.EventSecretRevealed:
		ev, err := secrethandler.ParseSecretRevealed(l)
		if err != nil {
			return v, err
		}
		v.SecretID, v.Message, v.Account = ev.SecretID, &ev.Message, &ev.Revealer
		v.Text = secrethandler.Bytes32ToString(ev.Message)
	case secrethandler.EventPaused, secrethandler.EventUnpaused:
		ev, err := secrethandler.ParsePauseEvent(l)
		if err != nil {
			return v, err
		}
		v.Account = &ev.Account
	}
	return v, nil
}

func (v eventView) String() string {
	switch v.Event {
	case secrethandler.EventSecretCommitted:
		return fmt.Sprintf("%s id=%d committer=%s party2=%s message=%s block=%d",
			v.Event, v.SecretID, v.Account, v.Secret.Party2, v.Secret.Message, v.BlockNumber)
	case secrethandler.EventSecretRevealed:
		return fmt.Sprintf("%s id=%d revealer=%s message=%s text=%q block=%d",
			v.Event, v.SecretID, v.Account, v.Message, v.Text, v.BlockNumber)
	default:
		return fmt.Sprintf("%s account=%s block=%d", v.Event, v.Account, v.BlockNumber)
	}
}

// receiptView is the printable form of a receipt.
type receiptView struct {
	Method      string        `json:"method"`
	From        types.Address `json:"from"`
	BlockNumber uint64        `json:"blockNumber"`
	Index       uint          `json:"index"`
	Status      string        `json:"status"`
	Revert      string        `json:"revert,omitempty"`
	SecretID    uint64        `json:"secretId,omitempty"`
	Events      []eventView   `json:"events,omitempty"`
}

func newReceiptView(r *types.Receipt) (receiptView, error) {
	v := receiptView{
		Method:      r.Method,
		From:        r.From,
		BlockNumber: r.BlockNumber,
		Index:       r.Index,
		Status:      "success",
	}
	if !r.Succeeded() {
		v.Status = "reverted"
		rev, err := secrethandler.DecodeRevert(r.RevertData)
		if err != nil {
			return v, err
		}
		v.Revert = rev.Reason
	}
	for _, l := range r.Logs {
		ev, err := newEventView(l)
		if err != nil {
			return v, err
		}
		v.Events = append(v.Events, ev)
	}
	return v, nil
}

func writeReceipt(w io.Writer, format string, v receiptView) error {
	if format == formatJSON {
		return printJSON(w, v)
	}
	fmt.Fprintf(w, "%s from %s: %s in block %d\n", v.Method, v.From, v.Status, v.BlockNumber)
	if v.Revert != "" {
		fmt.Fprintf(w, "revert: %s\n", v.Revert)
	}
	if v.SecretID != 0 {
		fmt.Fprintf(w, "secret id: %d\n", v.SecretID)
	}
	for _, ev := range v.Events {
		fmt.Fprintln(w, ev.String())
	}
	return nil
}
