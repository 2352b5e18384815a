package types

// Receipt status values.
const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt records the outcome of one call applied by the ledger.
type Receipt struct {
	Method      string
	From        Address
	Status      uint64
	Logs        []*Log
	RevertData  []byte // ABI-encoded Error(string) when Status is failed
	BlockNumber uint64
	Index       uint // position of the call within its block
}

// Succeeded returns true if the call was applied.
func (r *Receipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccessful
}
