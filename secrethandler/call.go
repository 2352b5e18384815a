package secrethandler

import (
	"errors"

	"github.com/secrethandler/secrethandler/core/rawdb"
	"github.com/secrethandler/secrethandler/core/types"
)

// ErrDeploymentBlock is returned for a call at height 0, which holds the
// deployment and never executes calls.
var ErrDeploymentBlock = errors.New("secrethandler: block 0 is reserved for the deployment")

// Call is the execution context of one handler call: who makes it, at which
// ledger height, and the events it emits.
//
// A call made with NewStagedCall writes its state changes into the given
// writer and the caller decides whether to commit them. A call made with
// NewCall has the handler commit its changes in a batch of their own.
type Call struct {
	Caller      types.Address
	BlockNumber uint64

	writer   rawdb.KeyValueWriter
	logs     []*types.Log
	onCommit []func()
}

// NewCall returns the context for a call by caller at blockNumber.
// blockNumber must be at least 1.
func NewCall(caller types.Address, blockNumber uint64) *Call {
	return &Call{Caller: caller, BlockNumber: blockNumber}
}

// NewStagedCall returns the context for a call whose state changes are
// staged into w.
func NewStagedCall(caller types.Address, blockNumber uint64, w rawdb.KeyValueWriter) *Call {
	return &Call{Caller: caller, BlockNumber: blockNumber, writer: w}
}

// Logs returns the events emitted so far.
func (c *Call) Logs() []*types.Log { return c.logs }

// Committed tells a staged call that its writes are durable. It runs the
// bookkeeping the handler deferred until then.
func (c *Call) Committed() {
	for _, fn := range c.onCommit {
		fn()
	}
	c.onCommit = nil
}

// afterCommit runs fn once the call's writes are durable: immediately for
// an unstaged call, on Committed otherwise.
func (c *Call) afterCommit(fn func()) {
	if c.writer == nil {
		fn()
		return
	}
	c.onCommit = append(c.onCommit, fn)
}

func (c *Call) validate() error {
	if c.BlockNumber == 0 {
		return ErrDeploymentBlock
	}
	return nil
}

func (c *Call) emit(l *types.Log) {
	l.BlockNumber = c.BlockNumber
	c.logs = append(c.logs, l)
}
