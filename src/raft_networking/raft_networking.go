package raft_networking

import (
	"math/rand"

	"github.com/mblichar/raft-replicas/src/raft_messages"
)

// Peer is a replica's outbound handle to another replica. Each sent message is dropped with
// configured percent probability, the sender never learns about dropped messages.
type Peer struct {
	Id              uint
	inbox           chan<- raft_messages.Message
	dropProbability int
}

func CreatePeer(id uint, inbox chan<- raft_messages.Message, dropProbability int) Peer {
	if dropProbability < 0 {
		dropProbability = 0
	}
	if dropProbability > 100 {
		dropProbability = 100
	}

	return Peer{
		Id:              id,
		inbox:           inbox,
		dropProbability: dropProbability,
	}
}

func (peer Peer) DropProbability() int {
	return peer.dropProbability
}

// Send delivers message unless it is randomly dropped or receiver's inbox is full.
func (peer Peer) Send(message raft_messages.Message) {
	if !shouldDeliver(peer.dropProbability, rand.Intn(100)) {
		return
	}

	select {
	case peer.inbox <- message:
	default:
		// full inbox is indistinguishable from a lossy link
	}
}

// shouldDeliver for draw uniform in [0, 100): probability 0 never drops, 100 always drops
func shouldDeliver(dropProbability int, draw int) bool {
	return draw >= dropProbability
}
