package secrethandler

import (
	"errors"
	"testing"

	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/crypto"
)

func TestEventTopics(t *testing.T) {
	tests := map[string]string{
		EventSecretCommitted: "SecretCommitted(uint256,(uint256,bytes32,uint256,address,address),address)",
		EventSecretRevealed:  "SecretRevealed(uint256,bytes32,address)",
		EventPaused:          "Paused(address)",
		EventUnpaused:        "Unpaused(address)",
	}
	for name, sig := range tests {
		if got, want := EventTopic(name), crypto.Keccak256Hash([]byte(sig)); got != want {
			t.Errorf("EventTopic(%s) = %s, want keccak(%q) = %s", name, got, sig, want)
		}
	}
}

func TestSecretCommittedLog(t *testing.T) {
	rec := types.Secret{
		ID:          42,
		Message:     crypto.Keccak256Hash([]byte("m")),
		BlockNumber: 9,
		Party1:      types.HexToAddress("0xaa"),
		Party2:      types.HexToAddress("0xbb"),
	}
	l, err := newSecretCommittedLog(testContract, rec)
	if err != nil {
		t.Fatalf("newSecretCommittedLog: %v", err)
	}
	if l.Address != testContract {
		t.Errorf("Address = %s, want %s", l.Address, testContract)
	}
	if len(l.Data) != 5*32 {
		t.Errorf("len(Data) = %d, want %d", len(l.Data), 5*32)
	}

	ev, err := ParseSecretCommitted(l)
	if err != nil {
		t.Fatalf("ParseSecretCommitted: %v", err)
	}
	if ev.SecretID != 42 || ev.Committer != rec.Party1 || ev.Secret != rec {
		t.Errorf("ParseSecretCommitted = %+v, want id 42 committer %s record %+v", ev, rec.Party1, rec)
	}
}

func TestSecretRevealedLog(t *testing.T) {
	msg, _ := StringToBytes32("this is the secret")
	revealer := types.HexToAddress("0xbb")
	l, err := newSecretRevealedLog(testContract, 3, msg, revealer)
	if err != nil {
		t.Fatalf("newSecretRevealedLog: %v", err)
	}
	ev, err := ParseSecretRevealed(l)
	if err != nil {
		t.Fatalf("ParseSecretRevealed: %v", err)
	}
	if ev.SecretID != 3 || ev.Message != msg || ev.Revealer != revealer {
		t.Errorf("ParseSecretRevealed = %+v", ev)
	}
	if name, _ := EventName(l); name != EventSecretRevealed {
		t.Errorf("EventName = %q, want %q", name, EventSecretRevealed)
	}
}

func TestPauseLogs(t *testing.T) {
	owner := types.HexToAddress("0xcc")
	for _, paused := range []bool{true, false} {
		l, err := newPauseLog(testContract, paused, owner)
		if err != nil {
			t.Fatalf("newPauseLog(%v): %v", paused, err)
		}
		ev, err := ParsePauseEvent(l)
		if err != nil {
			t.Fatalf("ParsePauseEvent: %v", err)
		}
		if ev.Paused != paused || ev.Account != owner {
			t.Errorf("ParsePauseEvent = %+v, want paused=%v account=%s", ev, paused, owner)
		}
	}
}

func TestParseWrongEvent(t *testing.T) {
	l, _ := newPauseLog(testContract, true, types.HexToAddress("0xcc"))
	if _, err := ParseSecretCommitted(l); err == nil {
		t.Error("ParseSecretCommitted accepted a Paused log")
	}
	if _, err := ParseSecretRevealed(l); err == nil {
		t.Error("ParseSecretRevealed accepted a Paused log")
	}

	unknown := &types.Log{Topics: []types.Hash{crypto.Keccak256Hash([]byte("Other()"))}}
	if _, err := EventName(unknown); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("EventName(unknown) err = %v, want %v", err, ErrUnknownEvent)
	}
	if _, err := EventName(&types.Log{}); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("EventName(no topics) err = %v, want %v", err, ErrUnknownEvent)
	}
}
