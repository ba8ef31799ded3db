package raft_state

// Log is an ordered sequence of entries with contiguous indexes starting at 1.
// Index 0 denotes the empty prefix and has term 0.
type Log struct {
	entries []LogEntry
}

func CreateLog(entries ...LogEntry) Log {
	log := Log{}
	log.Append(entries...)
	return log
}

func (log *Log) Append(entries ...LogEntry) {
	log.entries = append(log.entries, entries...)
}

func (log *Log) Len() int {
	return len(log.entries)
}

func (log *Log) LastIndex() uint {
	if len(log.entries) == 0 {
		return 0
	}
	return log.entries[len(log.entries)-1].Index
}

func (log *Log) LastTerm() uint {
	if len(log.entries) == 0 {
		return 0
	}
	return log.entries[len(log.entries)-1].Term
}

// Entry returns entry with given index, false when there's no such entry.
func (log *Log) Entry(index uint) (LogEntry, bool) {
	if index == 0 || index > uint(len(log.entries)) {
		return LogEntry{}, false
	}
	return log.entries[index-1], true
}

// TermAt returns term of entry with given index, 0 for index 0 or missing entries.
func (log *Log) TermAt(index uint) uint {
	entry, ok := log.Entry(index)
	if !ok {
		return 0
	}
	return entry.Term
}

// Matches reports whether log contains entry with given index and term,
// index 0 matches the empty prefix.
func (log *Log) Matches(index uint, term uint) bool {
	if index == 0 {
		return true
	}
	entry, ok := log.Entry(index)
	return ok && entry.Term == term
}

// EntriesFrom returns a copy of all entries with index >= given index.
func (log *Log) EntriesFrom(index uint) []LogEntry {
	if index == 0 {
		index = 1
	}
	if index > uint(len(log.entries)) {
		return []LogEntry{}
	}

	result := make([]LogEntry, len(log.entries)-int(index-1))
	copy(result, log.entries[index-1:])
	return result
}

// TruncateFrom removes entry with given index and all entries after it.
func (log *Log) TruncateFrom(index uint) {
	if index == 0 {
		index = 1
	}
	if index <= uint(len(log.entries)) {
		log.entries = log.entries[:index-1]
	}
}

// Entries returns a copy of all entries.
func (log *Log) Entries() []LogEntry {
	return log.EntriesFrom(1)
}

// CandidateIsUpToDate reports whether a candidate log ending with (lastTerm, lastIndex) is at least
// as up-to-date as this one, comparing terms first and indexes second.
func (log *Log) CandidateIsUpToDate(lastTerm uint, lastIndex uint) bool {
	if lastTerm != log.LastTerm() {
		return lastTerm > log.LastTerm()
	}
	return lastIndex >= log.LastIndex()
}
