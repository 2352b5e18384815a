package metrics

// Pre-defined metrics of the secret handler. All live in DefaultRegistry.

var (
	// SecretsCommitted counts accepted commitments.
	SecretsCommitted = DefaultRegistry.Counter("handler.commits")
	// SecretsRevealed counts accepted reveals.
	SecretsRevealed = DefaultRegistry.Counter("handler.reveals")
	// CallsReverted counts handler calls rejected with a revert.
	CallsReverted = DefaultRegistry.Counter("handler.reverts")
	// PauseToggles counts successful pause and unpause calls.
	PauseToggles = DefaultRegistry.Counter("handler.pause_toggles")
	// OpenSecrets tracks committed, unrevealed records. A ledger seeds it from
	// the store when it opens.
	OpenSecrets = DefaultRegistry.Gauge("handler.open_secrets")

	// ChainHeight tracks the last sealed block number.
	ChainHeight = DefaultRegistry.Gauge("ledger.height")
	// CallsApplied counts calls applied by the ledger, reverted or not.
	CallsApplied = DefaultRegistry.Counter("ledger.calls")
)
