package secrethandler

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/crypto"
)

// Event names.
const (
	EventSecretCommitted = "SecretCommitted"
	EventSecretRevealed  = "SecretRevealed"
	EventPaused          = "Paused"
	EventUnpaused        = "Unpaused"
)

const eventsABI = `[
  {"type":"event","name":"SecretCommitted","anonymous":false,"inputs":[
    {"name":"secretId","type":"uint256","indexed":true},
    {"name":"secret","type":"tuple","indexed":false,"internalType":"struct SecretHandler.Secret","components":[
      {"name":"id","type":"uint256"},
      {"name":"message","type":"bytes32"},
      {"name":"blockNumber","type":"uint256"},
      {"name":"party1","type":"address"},
      {"name":"party2","type":"address"}]},
    {"name":"committer","type":"address","indexed":true}]},
  {"type":"event","name":"SecretRevealed","anonymous":false,"inputs":[
    {"name":"secretId","type":"uint256","indexed":true},
    {"name":"message","type":"bytes32","indexed":false},
    {"name":"revealer","type":"address","indexed":true}]},
  {"type":"event","name":"Paused","anonymous":false,"inputs":[
    {"name":"account","type":"address","indexed":false}]},
  {"type":"event","name":"Unpaused","anonymous":false,"inputs":[
    {"name":"account","type":"address","indexed":false}]}
]`

// EventsABI is the parsed event interface of the handler.
var EventsABI = mustParseABI(eventsABI)

// ErrUnknownEvent is returned when a log's first topic matches no event.
var ErrUnknownEvent = errors.New("secrethandler: unknown event")

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// EventTopic returns topic0 of the named event.
func EventTopic(name string) types.Hash {
	return types.Hash(EventsABI.Events[name].ID)
}

// secretTuple mirrors the ABI tuple of a Secret record.
type secretTuple struct {
	Id          *big.Int
	Message     [32]byte
	BlockNumber *big.Int
	Party1      common.Address
	Party2      common.Address
}

// SecretCommittedEvent is a decoded SecretCommitted log.
type SecretCommittedEvent struct {
	SecretID  uint64
	Secret    types.Secret
	Committer types.Address
}

// SecretRevealedEvent is a decoded SecretRevealed log.
type SecretRevealedEvent struct {
	SecretID uint64
	Message  types.Hash
	Revealer types.Address
}

// PauseEvent is a decoded Paused or Unpaused log.
type PauseEvent struct {
	Paused  bool
	Account types.Address
}

func newSecretCommittedLog(contract types.Address, rec types.Secret) (*types.Log, error) {
	data, err := EventsABI.Events[EventSecretCommitted].Inputs.NonIndexed().Pack(secretTuple{
		Id:          new(big.Int).SetUint64(rec.ID),
		Message:     rec.Message,
		BlockNumber: new(big.Int).SetUint64(rec.BlockNumber),
		Party1:      common.Address(rec.Party1),
		Party2:      common.Address(rec.Party2),
	})
	if err != nil {
		return nil, fmt.Errorf("secrethandler: pack %s: %w", EventSecretCommitted, err)
	}
	return &types.Log{
		Address: contract,
		Topics: []types.Hash{
			EventTopic(EventSecretCommitted),
			types.BytesToHash(crypto.Uint64Word(rec.ID)),
			types.BytesToHash(crypto.AddressWord(rec.Party1)),
		},
		Data: data,
	}, nil
}

func newSecretRevealedLog(contract types.Address, id uint64, message types.Hash, revealer types.Address) (*types.Log, error) {
	data, err := EventsABI.Events[EventSecretRevealed].Inputs.NonIndexed().Pack([32]byte(message))
	if err != nil {
		return nil, fmt.Errorf("secrethandler: pack %s: %w", EventSecretRevealed, err)
	}
	return &types.Log{
		Address: contract,
		Topics: []types.Hash{
			EventTopic(EventSecretRevealed),
			types.BytesToHash(crypto.Uint64Word(id)),
			types.BytesToHash(crypto.AddressWord(revealer)),
		},
		Data: data,
	}, nil
}

func newPauseLog(contract types.Address, paused bool, account types.Address) (*types.Log, error) {
	name := EventUnpaused
	if paused {
		name = EventPaused
	}
	data, err := EventsABI.Events[name].Inputs.Pack(common.Address(account))
	if err != nil {
		return nil, fmt.Errorf("secrethandler: pack %s: %w", name, err)
	}
	return &types.Log{
		Address: contract,
		Topics:  []types.Hash{EventTopic(name)},
		Data:    data,
	}, nil
}

// EventName returns the name of the event that produced l.
func EventName(l *types.Log) (string, error) {
	if l == nil || len(l.Topics) == 0 {
		return "", ErrUnknownEvent
	}
	ev, err := EventsABI.EventByID(common.Hash(l.Topics[0]))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownEvent, l.Topics[0].Hex())
	}
	return ev.Name, nil
}

func expectEvent(l *types.Log, name string, topics int) error {
	got, err := EventName(l)
	if err != nil {
		return err
	}
	if got != name {
		return fmt.Errorf("secrethandler: log is %s, not %s", got, name)
	}
	if len(l.Topics) != topics {
		return fmt.Errorf("secrethandler: %s log has %d topics, want %d", name, len(l.Topics), topics)
	}
	return nil
}

func topicUint64(t types.Hash) (uint64, error) {
	v := new(big.Int).SetBytes(t[:])
	if !v.IsUint64() {
		return 0, fmt.Errorf("secrethandler: topic %s overflows uint64", t.Hex())
	}
	return v.Uint64(), nil
}

func topicAddress(t types.Hash) types.Address {
	return types.BytesToAddress(t[12:])
}

func bigToUint64(v *big.Int) (uint64, error) {
	if v == nil || !v.IsUint64() {
		return 0, fmt.Errorf("secrethandler: value %v overflows uint64", v)
	}
	return v.Uint64(), nil
}

// ParseSecretCommitted decodes a SecretCommitted log.
func ParseSecretCommitted(l *types.Log) (*SecretCommittedEvent, error) {
	if err := expectEvent(l, EventSecretCommitted, 3); err != nil {
		return nil, err
	}
	out, err := EventsABI.Events[EventSecretCommitted].Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("secrethandler: unpack %s: %w", EventSecretCommitted, err)
	}
	tuple := *abi.ConvertType(out[0], new(secretTuple)).(*secretTuple)

	id, err := topicUint64(l.Topics[1])
	if err != nil {
		return nil, err
	}
	recID, err := bigToUint64(tuple.Id)
	if err != nil {
		return nil, err
	}
	block, err := bigToUint64(tuple.BlockNumber)
	if err != nil {
		return nil, err
	}
	return &SecretCommittedEvent{
		SecretID: id,
		Secret: types.Secret{
			ID:          recID,
			Message:     types.Hash(tuple.Message),
			BlockNumber: block,
			Party1:      types.Address(tuple.Party1),
			Party2:      types.Address(tuple.Party2),
		},
		Committer: topicAddress(l.Topics[2]),
	}, nil
}

// ParseSecretRevealed decodes a SecretRevealed log.
func ParseSecretRevealed(l *types.Log) (*SecretRevealedEvent, error) {
	if err := expectEvent(l, EventSecretRevealed, 3); err != nil {
		return nil, err
	}
	out, err := EventsABI.Events[EventSecretRevealed].Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("secrethandler: unpack %s: %w", EventSecretRevealed, err)
	}
	id, err := topicUint64(l.Topics[1])
	if err != nil {
		return nil, err
	}
	return &SecretRevealedEvent{
		SecretID: id,
		Message:  types.Hash(out[0].([32]byte)),
		Revealer: topicAddress(l.Topics[2]),
	}, nil
}

// ParsePauseEvent decodes a Paused or Unpaused log.
func ParsePauseEvent(l *types.Log) (*PauseEvent, error) {
	name, err := EventName(l)
	if err != nil {
		return nil, err
	}
	if name != EventPaused && name != EventUnpaused {
		return nil, fmt.Errorf("secrethandler: log is %s, not a pause event", name)
	}
	out, err := EventsABI.Events[name].Inputs.Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("secrethandler: unpack %s: %w", name, err)
	}
	return &PauseEvent{
		Paused:  name == EventPaused,
		Account: types.Address(out[0].(common.Address)),
	}, nil
}
