package replica

import (
	"github.com/mblichar/raft-replicas/src/raft_state"
)

// ReplicaStatus is a point-in-time copy of replica state.
type ReplicaStatus struct {
	Id          uint
	State       raft_state.Role
	Connected   bool
	Value       int
	Term        uint
	VotedFor    int
	LeaderId    int
	CommitIndex uint
	LastApplied uint
	Log         []raft_state.LogEntry
}

// IsActiveLeader reports whether replica believes it is leader and can reach other replicas.
func (status ReplicaStatus) IsActiveLeader() bool {
	return status.State == raft_state.Leader && status.Connected
}
