package cluster

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mblichar/raft-replicas/src/config"
	"github.com/mblichar/raft-replicas/src/control"
	"github.com/mblichar/raft-replicas/src/logging"
	"github.com/mblichar/raft-replicas/src/raft_networking"
	"github.com/mblichar/raft-replicas/src/replica"
	"github.com/mblichar/raft-replicas/src/timer"
	uuid "github.com/satori/go.uuid"
)

var ErrUnknownReplica = errors.New("cluster: unknown replica")

// Cluster wires replicas together through a simulated network and drives them with control messages.
type Cluster struct {
	RunId        string
	Config       config.Config
	network      *raft_networking.Network
	replicas     []*replica.Replica
	replicasById map[uint]*replica.Replica
	logger       *logging.Logger

	mutex   sync.Mutex
	quit    chan struct{}
	running sync.WaitGroup
}

func CreateCluster(cfg config.Config, timeoutFactory timer.TimeoutFactory, logs chan logging.LoggerEntry) *Cluster {
	cluster := &Cluster{
		RunId:        uuid.NewV4().String(),
		Config:       cfg,
		network:      raft_networking.CreateNetwork(cfg.ReplicaIds, cfg.DropProbability, cfg.InboxSize),
		replicasById: make(map[uint]*replica.Replica, len(cfg.ReplicaIds)),
		logger:       logging.CreateLogger("[CLUSTER]", logs),
	}

	for _, replicaId := range cfg.ReplicaIds {
		r := replica.CreateReplica(
			replicaId,
			cfg,
			cluster.network.PeersOf(replicaId),
			cluster.network.Inbox(replicaId),
			timeoutFactory,
			logging.CreateLogger(fmt.Sprintf("[REPLICA %d]", replicaId), logs),
		)
		cluster.replicas = append(cluster.replicas, r)
		cluster.replicasById[replicaId] = r
	}

	return cluster
}

// Start runs every replica loop in its own goroutine, it's a no-op for already started cluster.
func (cluster *Cluster) Start() {
	cluster.mutex.Lock()
	defer cluster.mutex.Unlock()

	if cluster.quit != nil {
		return
	}

	cluster.quit = make(chan struct{})
	for _, r := range cluster.replicas {
		cluster.running.Add(1)
		go func(r *replica.Replica, quit <-chan struct{}) {
			defer cluster.running.Done()
			r.Run(quit)
		}(r, cluster.quit)
	}

	cluster.logger.Logf("started %d replicas (run %s, drop probability %d%%)",
		len(cluster.replicas), cluster.RunId, cluster.Config.DropProbability)
}

// Stop quits all replica loops and waits for them to finish.
func (cluster *Cluster) Stop() {
	cluster.mutex.Lock()
	defer cluster.mutex.Unlock()

	if cluster.quit == nil {
		return
	}

	close(cluster.quit)
	cluster.running.Wait()
	cluster.quit = nil
	cluster.logger.Log("stopped")
}

func (cluster *Cluster) replica(replicaId uint) (*replica.Replica, error) {
	r, ok := cluster.replicasById[replicaId]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownReplica, replicaId)
	}
	return r, nil
}

// Control sends control message to given replica without waiting for it to be handled.
func (cluster *Cluster) Control(replicaId uint, message control.ControlMessage) error {
	r, err := cluster.replica(replicaId)
	if err != nil {
		return err
	}

	cluster.logger.Logf("%s -> replica %d", message, replicaId)
	r.Control(message)
	return nil
}

// Apply sends Apply(delta) to given replica and waits for the result. Cluster must be started.
func (cluster *Cluster) Apply(replicaId uint, delta int) (control.ControlResult, error) {
	r, err := cluster.replica(replicaId)
	if err != nil {
		return control.ControlResult{}, err
	}

	message := control.ApplyMessage(delta)
	result := <-r.ControlWithResult(message)
	cluster.logger.Logf("%s -> replica %d: success: %t, result: %s", message, replicaId, result.Success, result.Result)
	return result, nil
}

func (cluster *Cluster) Status(replicaId uint) (replica.ReplicaStatus, error) {
	r, err := cluster.replica(replicaId)
	if err != nil {
		return replica.ReplicaStatus{}, err
	}
	return r.Status(), nil
}

// Statuses returns snapshots of all replicas ordered by id.
func (cluster *Cluster) Statuses() []replica.ReplicaStatus {
	statuses := make([]replica.ReplicaStatus, 0, len(cluster.replicas))
	for _, r := range cluster.replicas {
		statuses = append(statuses, r.Status())
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Id < statuses[j].Id })
	return statuses
}

// Leader returns connected leader with the highest term.
func (cluster *Cluster) Leader() (replica.ReplicaStatus, bool) {
	var leader replica.ReplicaStatus
	found := false
	for _, status := range cluster.Statuses() {
		if status.IsActiveLeader() && (!found || status.Term > leader.Term) {
			leader = status
			found = true
		}
	}
	return leader, found
}

func (cluster *Cluster) ReplicaIds() []uint {
	return append([]uint(nil), cluster.Config.ReplicaIds...)
}
