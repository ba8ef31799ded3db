package raft_state

// NilVotedFor Constant indicating that given replica has not voted in current term
const NilVotedFor = -1

// NoLeader Constant indicating that given replica does not know current leader
const NoLeader = -1

type Role int

const (
	Follower Role = iota
	Candidate
	Leader
	Dead
)

func (role Role) String() string {
	switch role {
	case Follower:
		return "FOLLOWER"
	case Candidate:
		return "CANDIDATE"
	case Leader:
		return "LEADER"
	case Dead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

type LogEntry struct {
	// Index of given log entry (1-based)
	Index uint
	// Term in which entry was received by leader
	Term uint
	// Delta applied to replica value once entry is committed
	Delta int
}

// PersistentState struct for state which survives Down/Up cycles of a replica
type PersistentState struct {
	// Latest term replica has seen
	CurrentTerm uint
	// Id of candidate that received vote in current term (NilVotedFor if none)
	VotedFor int
	// Log entries
	Log Log
}

// VolatileNodeState struct for volatile state kept on all replicas
type VolatileNodeState struct {
	Role Role
	// Simulated link presence, independent of message drop probability
	Connected bool
	// Index of highest log entry known to be committed
	CommitIndex uint
	// Index of highest log entry applied to Value
	LastApplied uint
	// Sum of deltas of all applied entries
	Value int
	// Id of current leader (NoLeader if unknown)
	LeaderId int
}

// VolatileLeaderState struct for volatile state kept only on leader (reinitialized after election)
type VolatileLeaderState struct {
	// Index of the next log entry to send for given replica
	NextIndex map[uint]uint
	// Index of highest log entry known to be replicated on given replica
	MatchIndex map[uint]uint
}

// CreateLeaderState initializes bookkeeping for freshly elected leader.
func CreateLeaderState(peerIds []uint, lastLogIndex uint) *VolatileLeaderState {
	state := &VolatileLeaderState{
		NextIndex:  make(map[uint]uint, len(peerIds)),
		MatchIndex: make(map[uint]uint, len(peerIds)),
	}

	for _, peerId := range peerIds {
		state.NextIndex[peerId] = lastLogIndex + 1
		state.MatchIndex[peerId] = 0
	}

	return state
}
