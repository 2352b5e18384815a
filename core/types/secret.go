package types

// Secret is the on-ledger record of a commitment shared by two parties.
//
// A record is Committed when every field is non-zero and Empty when every
// field is zero. ID 0 only ever appears in the Empty record.
type Secret struct {
	ID          uint64
	Message     Hash // commitment digest, keccak256(message || salt)
	BlockNumber uint64
	Party1      Address // committer
	Party2      Address // counter-signer
}

// IsEmpty reports whether s is the zero record, i.e. never created or
// already revealed.
func (s Secret) IsEmpty() bool {
	return s == Secret{}
}

// IsCommitted reports whether s holds a live commitment.
func (s Secret) IsCommitted() bool {
	return !s.Message.IsZero() && s.BlockNumber > 0 && !s.Party1.IsZero() && !s.Party2.IsZero()
}

// HasParty reports whether addr is one of the two parties of s.
func (s Secret) HasParty(addr Address) bool {
	return addr == s.Party1 || addr == s.Party2
}
