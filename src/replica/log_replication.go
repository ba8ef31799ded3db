package replica

import (
	"github.com/mblichar/raft-replicas/src/invariants"
	"github.com/mblichar/raft-replicas/src/raft_messages"
	"github.com/mblichar/raft-replicas/src/raft_state"
)

// sendHeartbeats sends every peer all entries starting at its next index and rearms heartbeat timeout.
func (replica *Replica) sendHeartbeats() {
	log := &replica.persistentState.Log
	for _, peerId := range replica.peerIds {
		nextIndex := replica.leaderState.NextIndex[peerId]
		prevLogIndex := nextIndex - 1

		replica.send(peerId, raft_messages.AppendEntryRequest{
			FromId:       replica.id,
			Term:         replica.persistentState.CurrentTerm,
			PrevLogIndex: prevLogIndex,
			PrevLogTerm:  log.TermAt(prevLogIndex),
			Entries:      log.EntriesFrom(nextIndex),
			CommitIndex:  replica.volatileState.CommitIndex,
		})
	}

	replica.armHeartbeat()
}

func (replica *Replica) handleAppendEntryRequest(request raft_messages.AppendEntryRequest) raft_messages.AppendEntryResponse {
	replica.observeTerm(request.Term)

	state := &replica.persistentState
	response := raft_messages.AppendEntryResponse{
		FromId:    replica.id,
		Term:      state.CurrentTerm,
		LastIndex: state.Log.LastIndex(),
	}

	if request.Term < state.CurrentTerm {
		return response
	}

	invariants.Check(replica.volatileState.Role != raft_state.Leader,
		"two leaders (%d and %d) in term %d", replica.id, request.FromId, request.Term)

	// request comes from the legitimate leader of current term
	replica.becomeFollower(request.Term)
	replica.volatileState.LeaderId = int(request.FromId)
	replica.electionTimer.Renew()

	if !state.Log.Matches(request.PrevLogIndex, request.PrevLogTerm) {
		return response
	}

	for i, entry := range request.Entries {
		existing, exists := state.Log.Entry(entry.Index)
		if exists && existing.Term == entry.Term {
			continue
		}

		if exists {
			invariants.Check(entry.Index > replica.volatileState.CommitIndex,
				"truncating committed entry %d (commit index %d)", entry.Index, replica.volatileState.CommitIndex)
			state.Log.TruncateFrom(entry.Index)
		}

		invariants.Check(entry.Index == state.Log.LastIndex()+1,
			"appending entry %d after last index %d", entry.Index, state.Log.LastIndex())
		state.Log.Append(request.Entries[i:]...)
		break
	}

	lastNewIndex := request.PrevLogIndex + uint(len(request.Entries))
	if request.CommitIndex > replica.volatileState.CommitIndex {
		replica.advanceCommitIndexTo(minIndex(request.CommitIndex, lastNewIndex))
	}

	response.Success = true
	response.LastIndex = lastNewIndex
	return response
}

func (replica *Replica) handleAppendEntryResponse(response raft_messages.AppendEntryResponse) {
	replica.observeTerm(response.Term)

	if replica.volatileState.Role != raft_state.Leader || response.Term != replica.persistentState.CurrentTerm {
		return
	}

	peerId := response.FromId
	leaderState := replica.leaderState
	if _, ok := leaderState.NextIndex[peerId]; !ok {
		return
	}

	if response.Success {
		if response.LastIndex > leaderState.MatchIndex[peerId] {
			leaderState.MatchIndex[peerId] = response.LastIndex
		}
		leaderState.NextIndex[peerId] = leaderState.MatchIndex[peerId] + 1
		replica.advanceLeaderCommitIndex()
		return
	}

	// log inconsistency, back off and retry on next heartbeat
	nextIndex := leaderState.NextIndex[peerId]
	if nextIndex > 1 {
		nextIndex--
	}
	if response.LastIndex+1 < nextIndex {
		nextIndex = response.LastIndex + 1
	}
	if nextIndex <= leaderState.MatchIndex[peerId] {
		nextIndex = leaderState.MatchIndex[peerId] + 1
	}
	leaderState.NextIndex[peerId] = nextIndex
}

// appendNewEntry appends client delta to leader's log, it's replicated with next heartbeat.
func (replica *Replica) appendNewEntry(delta int) raft_state.LogEntry {
	log := &replica.persistentState.Log
	entry := raft_state.LogEntry{
		Index: log.LastIndex() + 1,
		Term:  replica.persistentState.CurrentTerm,
		Delta: delta,
	}
	log.Append(entry)

	// a single replica cluster commits right away
	replica.advanceLeaderCommitIndex()
	return entry
}

// advanceLeaderCommitIndex commits the highest entry of current term replicated on majority. Entries
// from previous terms are committed only together with a later entry of current term.
func (replica *Replica) advanceLeaderCommitIndex() {
	log := &replica.persistentState.Log
	currentTerm := replica.persistentState.CurrentTerm

	for index := log.LastIndex(); index > replica.volatileState.CommitIndex; index-- {
		// terms in log never decrease, so no earlier entry is from current term either
		if log.TermAt(index) != currentTerm {
			return
		}

		replicas := 1 // leader
		for _, matchIndex := range replica.leaderState.MatchIndex {
			if matchIndex >= index {
				replicas++
			}
		}

		if replicas >= replica.majoritySize() {
			replica.advanceCommitIndexTo(index)
			return
		}
	}
}

func (replica *Replica) advanceCommitIndexTo(index uint) {
	if index <= replica.volatileState.CommitIndex {
		return
	}

	invariants.Check(index <= replica.persistentState.Log.LastIndex(),
		"commit index %d beyond last log index %d", index, replica.persistentState.Log.LastIndex())

	replica.volatileState.CommitIndex = index
	replica.applyCommittedEntries()
}

// applyCommittedEntries applies all committed but not applied entries in index order.
func (replica *Replica) applyCommittedEntries() {
	state := &replica.volatileState
	for state.LastApplied < state.CommitIndex {
		entry, ok := replica.persistentState.Log.Entry(state.LastApplied + 1)
		invariants.Check(ok, "missing committed entry %d", state.LastApplied+1)
		if !ok {
			return
		}

		state.LastApplied = entry.Index
		state.Value += entry.Delta
	}
}

func minIndex(a uint, b uint) uint {
	if a < b {
		return a
	}
	return b
}
