package raft_messages

import (
	"fmt"
	"strings"

	"github.com/mblichar/raft-replicas/src/raft_state"
)

// Describe formats message for logs.
func Describe(message Message) string {
	switch m := message.(type) {
	case AppendEntryRequest:
		return fmt.Sprintf("%s(Term: %d PrevLogIndex: %d PrevLogTerm: %d Entries: %s Commit: %d)",
			m.MessageTypeString(), m.Term, m.PrevLogIndex, m.PrevLogTerm, LogEntriesToString(m.Entries), m.CommitIndex)
	case AppendEntryResponse:
		return fmt.Sprintf("%s(Term: %d Success: %t LastIndex: %d)",
			m.MessageTypeString(), m.Term, m.Success, m.LastIndex)
	case RequestVoteRequest:
		return fmt.Sprintf("%s(Term: %d LastLogIndex: %d LastLogTerm: %d)",
			m.MessageTypeString(), m.Term, m.LastLogIndex, m.LastLogTerm)
	case RequestVoteResponse:
		return fmt.Sprintf("%s(Term: %d VoteGranted: %t)", m.MessageTypeString(), m.Term, m.VoteGranted)
	default:
		return fmt.Sprintf("Unknown(%T)", message)
	}
}

func LogEntriesToString(entries []raft_state.LogEntry) string {
	var builder strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&builder, "[I:%d T:%d D:%+d]", entry.Index, entry.Term, entry.Delta)
	}
	return builder.String()
}
