package replica

import (
	"fmt"

	"github.com/mblichar/raft-replicas/src/control"
	"github.com/mblichar/raft-replicas/src/raft_state"
)

func (replica *Replica) handleControl(wrapper control.ControlWrapper) {
	result := replica.applyControl(wrapper.Message)
	if wrapper.Result != nil {
		wrapper.Result <- result
	}
}

func (replica *Replica) applyControl(message control.ControlMessage) control.ControlResult {
	state := &replica.volatileState
	result := control.ControlResult{Result: "DONE", Success: true}

	switch message.Kind {
	case control.Down:
		if state.Role != raft_state.Dead {
			replica.logger.Logf("%s -> DEAD in term %d", state.Role, replica.persistentState.CurrentTerm)
			state.Role = raft_state.Dead
			state.LeaderId = raft_state.NoLeader
			replica.leaderState = nil
			replica.votes = nil
			replica.stopTimers()
		}
	case control.Up:
		if state.Role == raft_state.Dead {
			replica.logger.Logf("DEAD -> FOLLOWER in term %d", replica.persistentState.CurrentTerm)
			state.Role = raft_state.Follower
			replica.electionTimer.Renew()
		}
	case control.Disconnect:
		if state.Connected {
			replica.logger.Log("disconnected")
			state.Connected = false
		}
	case control.Connect:
		if !state.Connected {
			replica.logger.Log("connected")
			state.Connected = true
		}
	case control.Apply:
		if state.Role != raft_state.Leader {
			result = control.ControlResult{Result: "not a leader", Success: false}
			break
		}
		entry := replica.appendNewEntry(message.Delta)
		result.Result = fmt.Sprintf("appended at index %d in term %d", entry.Index, entry.Term)
	default:
		result = control.ControlResult{Result: fmt.Sprintf("unknown control message %s", message), Success: false}
	}

	result.LeaderId = state.LeaderId
	return result
}
