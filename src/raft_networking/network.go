package raft_networking

import (
	"github.com/mblichar/raft-replicas/src/raft_messages"
)

// Network owns one buffered inbox channel per replica and hands out peers pointing at them.
type Network struct {
	replicaIds      []uint
	inboxes         map[uint]chan raft_messages.Message
	dropProbability int
}

func CreateNetwork(replicaIds []uint, dropProbability int, inboxSize int) *Network {
	network := Network{
		replicaIds:      append([]uint(nil), replicaIds...),
		inboxes:         make(map[uint]chan raft_messages.Message, len(replicaIds)),
		dropProbability: dropProbability,
	}

	for _, replicaId := range replicaIds {
		network.inboxes[replicaId] = make(chan raft_messages.Message, inboxSize)
	}

	return &network
}

// Inbox returns receive endpoint of given replica, nil for unknown replica.
func (network *Network) Inbox(replicaId uint) <-chan raft_messages.Message {
	inbox, ok := network.inboxes[replicaId]
	if !ok {
		return nil
	}
	return inbox
}

// PeersOf returns peers for all replicas except given one.
func (network *Network) PeersOf(replicaId uint) []Peer {
	peers := make([]Peer, 0, len(network.replicaIds))
	for _, peerId := range network.replicaIds {
		if peerId != replicaId {
			peers = append(peers, CreatePeer(peerId, network.inboxes[peerId], network.dropProbability))
		}
	}
	return peers
}
