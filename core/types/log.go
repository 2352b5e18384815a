// log.go implements ledger event logs and log filter matching.
package types

// MaxTopicsPerLog is the maximum number of indexed topics in a single log.
const MaxTopicsPerLog = 4

// Log represents an event emitted by the secret handler.
type Log struct {
	Address     Address // emitting deployment
	Topics      []Hash
	Data        []byte
	BlockNumber uint64
	Index       uint // position of the log within its block
}

// LogFilter defines criteria for matching logs. A log matches if:
//   - Addresses is empty OR the log address is in Addresses.
//   - For each position i in Topics: Topics[i] is empty (wildcard)
//     OR the log's topic at position i is in Topics[i].
//   - The log's block lies in [FromBlock, ToBlock]; zero bounds are open.
type LogFilter struct {
	Addresses []Address
	Topics    [][]Hash
	FromBlock uint64
	ToBlock   uint64
}

// FilterMatch returns true if the log satisfies the given filter criteria.
func FilterMatch(l *Log, f *LogFilter) bool {
	if l == nil || f == nil {
		return false
	}
	if f.FromBlock > 0 && l.BlockNumber < f.FromBlock {
		return false
	}
	if f.ToBlock > 0 && l.BlockNumber > f.ToBlock {
		return false
	}

	if len(f.Addresses) > 0 {
		found := false
		for _, addr := range f.Addresses {
			if l.Address == addr {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for i, topicSet := range f.Topics {
		if len(topicSet) == 0 {
			continue
		}
		if i >= len(l.Topics) {
			return false
		}
		found := false
		for _, t := range topicSet {
			if l.Topics[i] == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FilterLogs returns the logs matching f. A nil filter matches everything.
func FilterLogs(logs []*Log, f *LogFilter) []*Log {
	if f == nil {
		return logs
	}
	var result []*Log
	for _, l := range logs {
		if FilterMatch(l, f) {
			result = append(result, l)
		}
	}
	return result
}
