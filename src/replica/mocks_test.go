package replica

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mblichar/raft-replicas/src/config"
	"github.com/mblichar/raft-replicas/src/logging"
	"github.com/mblichar/raft-replicas/src/raft_messages"
	"github.com/mblichar/raft-replicas/src/raft_networking"
	"github.com/mblichar/raft-replicas/src/raft_state"
	"github.com/mblichar/raft-replicas/src/timer"
)

type timeoutMock struct {
	kind         string
	milliseconds int
	done         chan struct{}
	fireOnce     sync.Once
	cancelled    atomic.Bool
}

func (mock *timeoutMock) Done() <-chan struct{} {
	return mock.done
}

func (mock *timeoutMock) Cancel() {
	mock.cancelled.Store(true)
}

func (mock *timeoutMock) fire() {
	mock.fireOnce.Do(func() { close(mock.done) })
}

type timeoutFactoryMock struct {
	mutex    sync.Mutex
	timeouts []*timeoutMock
}

func (mock *timeoutFactoryMock) Timeout(kind string, milliseconds int) timer.Timeout {
	mock.mutex.Lock()
	defer mock.mutex.Unlock()

	timeout := &timeoutMock{
		kind:         kind,
		milliseconds: milliseconds,
		done:         make(chan struct{}),
	}
	mock.timeouts = append(mock.timeouts, timeout)
	return timeout
}

// last returns most recently created timeout of given kind, nil if there's none
func (mock *timeoutFactoryMock) last(kind string) *timeoutMock {
	mock.mutex.Lock()
	defer mock.mutex.Unlock()

	for i := len(mock.timeouts) - 1; i >= 0; i-- {
		if mock.timeouts[i].kind == kind {
			return mock.timeouts[i]
		}
	}
	return nil
}

func (mock *timeoutFactoryMock) count(kind string) int {
	mock.mutex.Lock()
	defer mock.mutex.Unlock()

	count := 0
	for _, timeout := range mock.timeouts {
		if timeout.kind == kind {
			count++
		}
	}
	return count
}

// testReplica wires replica with inboxes of its peers so that tests can inspect sent messages
type testReplica struct {
	*Replica
	factory  *timeoutFactoryMock
	inbox    chan raft_messages.Message
	outboxes map[uint]chan raft_messages.Message
}

func testConfig(replicaIds ...uint) config.Config {
	cfg := config.DefaultConfig()
	cfg.ReplicaIds = replicaIds
	cfg.ElectionTimeoutMin = 150
	cfg.ElectionTimeoutMax = 300
	cfg.HeartbeatTimeout = 15
	return cfg
}

func createTestReplica(id uint, peerIds ...uint) *testReplica {
	factory := &timeoutFactoryMock{}
	inbox := make(chan raft_messages.Message, 100)
	outboxes := make(map[uint]chan raft_messages.Message)
	peers := make([]raft_networking.Peer, 0, len(peerIds))
	for _, peerId := range peerIds {
		outboxes[peerId] = make(chan raft_messages.Message, 100)
		peers = append(peers, raft_networking.CreatePeer(peerId, outboxes[peerId], 0))
	}

	cfg := testConfig(append([]uint{id}, peerIds...)...)
	logger := logging.CreateLogger(fmt.Sprintf("[REPLICA %d]", id), nil)
	return &testReplica{
		Replica:  CreateReplica(id, cfg, peers, inbox, factory, logger),
		factory:  factory,
		inbox:    inbox,
		outboxes: outboxes,
	}
}

// createLeader creates replica which won election in given term with given log
func createLeader(term uint, entries []raft_state.LogEntry, id uint, peerIds ...uint) *testReplica {
	replica := createTestReplica(id, peerIds...)
	replica.persistentState.CurrentTerm = term - 1
	replica.persistentState.Log = raft_state.CreateLog(entries...)
	replica.startElection()
	for _, peerId := range peerIds {
		replica.handleRequestVoteResponse(raft_messages.RequestVoteResponse{FromId: peerId, Term: term, VoteGranted: true})
	}
	replica.drainOutboxes()
	return replica
}

func (replica *testReplica) drainOutboxes() {
	for _, outbox := range replica.outboxes {
		drainMessages(outbox)
	}
}

func drainMessages(channel chan raft_messages.Message) []raft_messages.Message {
	messages := []raft_messages.Message{}
	for {
		select {
		case message := <-channel:
			messages = append(messages, message)
		default:
			return messages
		}
	}
}

func receiveMessage(t *testing.T, channel chan raft_messages.Message) raft_messages.Message {
	t.Helper()
	select {
	case message := <-channel:
		return message
	case <-time.After(time.Second):
		t.Fatal("expected message to be sent")
		return nil
	}
}

func assertNoMessage(t *testing.T, channel chan raft_messages.Message) {
	t.Helper()
	select {
	case message := <-channel:
		t.Fatalf("expected no message, got %s", raft_messages.Describe(message))
	case <-time.After(50 * time.Millisecond):
	}
}

// waitForStatus polls replica status until condition holds
func waitForStatus(t *testing.T, replica *Replica, condition func(status ReplicaStatus) bool) ReplicaStatus {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if status := replica.Status(); condition(status) {
			return status
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("replica status did not reach expected condition, last status: %+v", replica.Status())
	return ReplicaStatus{}
}
