package replica

import (
	"github.com/mblichar/raft-replicas/src/raft_messages"
	"github.com/mblichar/raft-replicas/src/raft_state"
)

func (replica *Replica) startElection() {
	replica.cancelHeartbeat()
	replica.leaderState = nil
	replica.volatileState.Role = raft_state.Candidate
	replica.volatileState.LeaderId = raft_state.NoLeader
	replica.persistentState.CurrentTerm++
	replica.persistentState.VotedFor = int(replica.id)
	replica.votes = map[uint]bool{replica.id: true} // candidate votes for itself
	replica.electionTimer.Renew()

	replica.logger.Logf("starting election for term %d (timeout %dms)",
		replica.persistentState.CurrentTerm, replica.electionTimer.LastDuration())

	if len(replica.votes) >= replica.majoritySize() {
		replica.becomeLeader()
		return
	}

	replica.broadcast(raft_messages.RequestVoteRequest{
		FromId:       replica.id,
		Term:         replica.persistentState.CurrentTerm,
		LastLogIndex: replica.persistentState.Log.LastIndex(),
		LastLogTerm:  replica.persistentState.Log.LastTerm(),
	})
}

func (replica *Replica) handleRequestVoteRequest(request raft_messages.RequestVoteRequest) raft_messages.RequestVoteResponse {
	replica.observeTerm(request.Term)

	state := &replica.persistentState
	response := raft_messages.RequestVoteResponse{FromId: replica.id, Term: state.CurrentTerm}

	if request.Term < state.CurrentTerm {
		return response
	}

	if state.VotedFor != raft_state.NilVotedFor && state.VotedFor != int(request.FromId) {
		return response
	}

	if !state.Log.CandidateIsUpToDate(request.LastLogTerm, request.LastLogIndex) {
		return response
	}

	state.VotedFor = int(request.FromId)
	replica.electionTimer.Renew()
	response.VoteGranted = true
	return response
}

func (replica *Replica) handleRequestVoteResponse(response raft_messages.RequestVoteResponse) {
	replica.observeTerm(response.Term)

	if replica.volatileState.Role != raft_state.Candidate ||
		response.Term != replica.persistentState.CurrentTerm ||
		!response.VoteGranted {
		return
	}

	replica.votes[response.FromId] = true
	if len(replica.votes) >= replica.majoritySize() {
		replica.becomeLeader()
	}
}

func (replica *Replica) becomeLeader() {
	replica.volatileState.Role = raft_state.Leader
	replica.volatileState.LeaderId = int(replica.id)
	replica.votes = nil
	replica.leaderState = raft_state.CreateLeaderState(replica.peerIds, replica.persistentState.Log.LastIndex())

	replica.logger.Logf("elected LEADER for term %d", replica.persistentState.CurrentTerm)

	replica.sendHeartbeats()
}
