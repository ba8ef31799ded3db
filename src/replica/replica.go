package replica

import (
	"sync"

	"github.com/mblichar/raft-replicas/src/config"
	"github.com/mblichar/raft-replicas/src/control"
	"github.com/mblichar/raft-replicas/src/invariants"
	"github.com/mblichar/raft-replicas/src/logging"
	"github.com/mblichar/raft-replicas/src/raft_messages"
	"github.com/mblichar/raft-replicas/src/raft_networking"
	"github.com/mblichar/raft-replicas/src/raft_state"
	"github.com/mblichar/raft-replicas/src/timer"
)

const HeartbeatTimeoutKind = "heartbeat"

const controlsBufferSize = 100

// Replica is a single member of the simulated cluster. All of its state is mutated only by the
// goroutine executing Run, stateMutex is held while an event is handled so that Status never
// observes a half-applied transition.
type Replica struct {
	id              uint
	stateMutex      sync.Mutex
	persistentState raft_state.PersistentState
	volatileState   raft_state.VolatileNodeState
	leaderState     *raft_state.VolatileLeaderState
	// votes granted in current election, nil when not a candidate
	votes map[uint]bool

	peers    map[uint]raft_networking.Peer
	peerIds  []uint
	inbox    <-chan raft_messages.Message
	controls chan control.ControlWrapper

	config         config.Config
	timeoutFactory timer.TimeoutFactory
	electionTimer  *timer.ElectionTimer
	heartbeat      timer.Timeout
	logger         *logging.Logger
}

func CreateReplica(
	id uint,
	cfg config.Config,
	peers []raft_networking.Peer,
	inbox <-chan raft_messages.Message,
	timeoutFactory timer.TimeoutFactory,
	logger *logging.Logger,
) *Replica {
	replica := &Replica{
		id: id,
		persistentState: raft_state.PersistentState{
			VotedFor: raft_state.NilVotedFor,
		},
		volatileState: raft_state.VolatileNodeState{
			Role:      raft_state.Follower,
			Connected: true,
			LeaderId:  raft_state.NoLeader,
		},
		peers:          make(map[uint]raft_networking.Peer, len(peers)),
		inbox:          inbox,
		controls:       make(chan control.ControlWrapper, controlsBufferSize),
		config:         cfg,
		timeoutFactory: timeoutFactory,
		logger:         logger,
	}

	for _, peer := range peers {
		replica.peers[peer.Id] = peer
		replica.peerIds = append(replica.peerIds, peer.Id)
	}

	replica.electionTimer = timer.CreateElectionTimer(timeoutFactory, cfg.ElectionTimeoutMin, cfg.ElectionTimeoutMax)

	return replica
}

func (replica *Replica) Id() uint {
	return replica.id
}

// Run processes messages, control messages and timeouts until quit is closed. Election timer is
// rearmed on every start, so a loop can be restarted after quit.
func (replica *Replica) Run(quit <-chan struct{}) {
	replica.locked(replica.armElectionTimer)
	for {
		select {
		case wrapper := <-replica.controls:
			replica.locked(func() { replica.handleControl(wrapper) })
		case message := <-replica.inbox:
			replica.locked(func() { replica.handleMessage(message) })
		case <-replica.electionTimer.Done():
			replica.locked(replica.handleElectionTimeout)
		case <-replica.heartbeatDone():
			replica.locked(replica.handleHeartbeatTimeout)
		case <-quit:
			replica.locked(replica.stopTimers)
			return
		}
	}
}

// Control enqueues control message, it blocks only when control queue is full.
func (replica *Replica) Control(message control.ControlMessage) {
	replica.controls <- control.ControlWrapper{Message: message}
}

// ControlWithResult enqueues control message, returned channel receives result once it is handled.
func (replica *Replica) ControlWithResult(message control.ControlMessage) <-chan control.ControlResult {
	result := make(chan control.ControlResult, 1)
	replica.controls <- control.ControlWrapper{Message: message, Result: result}
	return result
}

func (replica *Replica) Status() ReplicaStatus {
	replica.stateMutex.Lock()
	defer replica.stateMutex.Unlock()

	return ReplicaStatus{
		Id:          replica.id,
		State:       replica.volatileState.Role,
		Connected:   replica.volatileState.Connected,
		Value:       replica.volatileState.Value,
		Term:        replica.persistentState.CurrentTerm,
		VotedFor:    replica.persistentState.VotedFor,
		LeaderId:    replica.volatileState.LeaderId,
		CommitIndex: replica.volatileState.CommitIndex,
		LastApplied: replica.volatileState.LastApplied,
		Log:         replica.persistentState.Log.Entries(),
	}
}

func (replica *Replica) locked(handler func()) {
	replica.stateMutex.Lock()
	defer replica.stateMutex.Unlock()
	handler()
}

func (replica *Replica) handleMessage(message raft_messages.Message) {
	// dead and disconnected replicas lose every received message
	if replica.volatileState.Role == raft_state.Dead || !replica.volatileState.Connected {
		return
	}

	replica.logReceived(message)

	switch m := message.(type) {
	case raft_messages.AppendEntryRequest:
		replica.send(m.FromId, replica.handleAppendEntryRequest(m))
	case raft_messages.AppendEntryResponse:
		replica.handleAppendEntryResponse(m)
	case raft_messages.RequestVoteRequest:
		replica.send(m.FromId, replica.handleRequestVoteRequest(m))
	case raft_messages.RequestVoteResponse:
		replica.handleRequestVoteResponse(m)
	}
}

// logReceived logs election traffic, requests carrying entries and rejected appends, plain
// heartbeats and their acknowledgements are too frequent.
func (replica *Replica) logReceived(message raft_messages.Message) {
	switch m := message.(type) {
	case raft_messages.AppendEntryRequest:
		if len(m.Entries) == 0 {
			return
		}
	case raft_messages.AppendEntryResponse:
		if m.Success {
			return
		}
	}
	replica.logger.Logf("received %s from %d", raft_messages.Describe(message), message.SenderId())
}

func (replica *Replica) handleElectionTimeout() {
	switch replica.volatileState.Role {
	case raft_state.Dead:
		return
	case raft_state.Leader:
		replica.electionTimer.Renew()
	default:
		replica.startElection()
	}
}

func (replica *Replica) handleHeartbeatTimeout() {
	replica.heartbeat = nil
	if replica.volatileState.Role == raft_state.Leader {
		replica.sendHeartbeats()
	}
}

func (replica *Replica) heartbeatDone() <-chan struct{} {
	if replica.heartbeat == nil {
		return nil
	}
	return replica.heartbeat.Done()
}

func (replica *Replica) armHeartbeat() {
	replica.cancelHeartbeat()
	replica.heartbeat = replica.timeoutFactory.Timeout(HeartbeatTimeoutKind, replica.config.HeartbeatTimeout)
}

func (replica *Replica) cancelHeartbeat() {
	if replica.heartbeat != nil {
		replica.heartbeat.Cancel()
		replica.heartbeat = nil
	}
}

func (replica *Replica) armElectionTimer() {
	if replica.volatileState.Role != raft_state.Dead {
		replica.electionTimer.Renew()
	}
}

func (replica *Replica) stopTimers() {
	replica.electionTimer.Stop()
	replica.cancelHeartbeat()
}

// observeTerm adopts newer term, converting replica to follower.
func (replica *Replica) observeTerm(term uint) {
	if term > replica.persistentState.CurrentTerm {
		replica.becomeFollower(term)
	}
}

func (replica *Replica) becomeFollower(term uint) {
	invariants.Check(term >= replica.persistentState.CurrentTerm,
		"term decreased from %d to %d", replica.persistentState.CurrentTerm, term)

	if term > replica.persistentState.CurrentTerm {
		replica.persistentState.CurrentTerm = term
		replica.persistentState.VotedFor = raft_state.NilVotedFor
		replica.volatileState.LeaderId = raft_state.NoLeader
	}

	if replica.volatileState.Role != raft_state.Follower {
		replica.logger.Logf("%s -> FOLLOWER in term %d", replica.volatileState.Role, term)
	}

	replica.volatileState.Role = raft_state.Follower
	replica.leaderState = nil
	replica.votes = nil
	replica.cancelHeartbeat()
}

func (replica *Replica) send(peerId uint, message raft_messages.Message) {
	if !replica.volatileState.Connected {
		return
	}

	if peer, ok := replica.peers[peerId]; ok {
		peer.Send(message)
	}
}

func (replica *Replica) broadcast(message raft_messages.Message) {
	for _, peerId := range replica.peerIds {
		replica.send(peerId, message)
	}
}

func (replica *Replica) majoritySize() int {
	return replica.config.MajoritySize()
}
