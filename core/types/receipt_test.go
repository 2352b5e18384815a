package types

import "testing"

func TestReceiptStatusConstants(t *testing.T) {
	if ReceiptStatusFailed != 0 {
		t.Errorf("ReceiptStatusFailed = %d, want 0", ReceiptStatusFailed)
	}
	if ReceiptStatusSuccessful != 1 {
		t.Errorf("ReceiptStatusSuccessful = %d, want 1", ReceiptStatusSuccessful)
	}
}

func TestReceiptSucceeded(t *testing.T) {
	r := &Receipt{Method: "pause", Status: ReceiptStatusSuccessful}
	if !r.Succeeded() {
		t.Error("Succeeded() should return true for status 1")
	}

	r = &Receipt{Method: "pause", Status: ReceiptStatusFailed, RevertData: []byte{0x08, 0xc3, 0x79, 0xa0}}
	if r.Succeeded() {
		t.Error("Succeeded() should return false for status 0")
	}
}

func TestReceiptLogsFilter(t *testing.T) {
	contract := HexToAddress("0xc0")
	topic := HexToHash("0xabcd")
	receipts := []*Receipt{
		{Status: ReceiptStatusSuccessful, Logs: []*Log{{Address: contract, Topics: []Hash{topic}, BlockNumber: 1}}},
		{Status: ReceiptStatusFailed},
		{Status: ReceiptStatusSuccessful, Logs: []*Log{{Address: contract, Topics: []Hash{HexToHash("0x01")}, BlockNumber: 1, Index: 1}}},
	}
	var logs []*Log
	for _, r := range receipts {
		logs = append(logs, r.Logs...)
	}
	got := FilterLogs(logs, &LogFilter{Topics: [][]Hash{{topic}}})
	if len(got) != 1 || got[0] != receipts[0].Logs[0] {
		t.Fatalf("FilterLogs = %v, want the first receipt's log", got)
	}
	if all := FilterLogs(logs, nil); len(all) != 2 {
		t.Errorf("FilterLogs(nil) returned %d logs, want 2", len(all))
	}
}
