package raft_messages

import (
	"github.com/mblichar/raft-replicas/src/raft_state"
)

// AppendEntryRequest is sent by leader to replicate log entries, also used as heartbeat
type AppendEntryRequest struct {
	// Leader's id
	FromId uint
	// Leader's term
	Term uint
	// Index of log entry immediately preceding new ones
	PrevLogIndex uint
	// Term of PrevLogIndex entry
	PrevLogTerm uint
	// Log entries to store (empty for heartbeat)
	Entries []raft_state.LogEntry
	// Leader's commit index
	CommitIndex uint
}

type AppendEntryResponse struct {
	FromId uint
	// Current term of the responding replica, for leader to update itself
	Term uint
	// True if follower contained entry matching PrevLogIndex and PrevLogTerm
	Success bool
	// On success the last index known to match leader's log, otherwise the last index in follower's log
	LastIndex uint
}

func (AppendEntryRequest) MessageType() MessageType {
	return AppendEntryRequestType
}

func (AppendEntryRequest) MessageTypeString() string {
	return "AppendEntryRequest"
}

func (request AppendEntryRequest) SenderId() uint {
	return request.FromId
}

func (request AppendEntryRequest) MessageTerm() uint {
	return request.Term
}

func (AppendEntryResponse) MessageType() MessageType {
	return AppendEntryResponseType
}

func (AppendEntryResponse) MessageTypeString() string {
	return "AppendEntryResponse"
}

func (response AppendEntryResponse) SenderId() uint {
	return response.FromId
}

func (response AppendEntryResponse) MessageTerm() uint {
	return response.Term
}
