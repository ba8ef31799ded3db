package cluster

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/mblichar/raft-replicas/src/config"
	"github.com/mblichar/raft-replicas/src/raft_state"
	"github.com/mblichar/raft-replicas/src/replica"
	"github.com/mblichar/raft-replicas/src/timer"
	"github.com/stretchr/testify/require"
)

const (
	eventuallyTimeout = 10 * time.Second
	pollInterval      = 5 * time.Millisecond
)

func startTestCluster(t *testing.T, dropProbability int) *Cluster {
	cfg := config.DefaultConfig()
	cfg.DropProbability = dropProbability
	require.NoError(t, cfg.Validate())

	cluster := CreateCluster(cfg, timer.RegularTimeoutFactory{}, nil)
	cluster.Start()
	t.Cleanup(cluster.Stop)
	return cluster
}

func waitForLeader(t *testing.T, cluster *Cluster) replica.ReplicaStatus {
	t.Helper()
	var leader replica.ReplicaStatus
	require.Eventually(t, func() bool {
		var found bool
		leader, found = cluster.Leader()
		return found
	}, eventuallyTimeout, pollInterval, "no leader elected")
	return leader
}

// applyToLeader retries until some leader accepts delta
func applyToLeader(t *testing.T, cluster *Cluster, delta int) {
	t.Helper()
	require.Eventually(t, func() bool {
		leader, found := cluster.Leader()
		if !found {
			return false
		}
		result, err := cluster.Apply(leader.Id, delta)
		return err == nil && result.Success
	}, eventuallyTimeout, pollInterval, "no leader accepted Apply(%d)", delta)
}

func waitForValues(t *testing.T, cluster *Cluster, replicaIds []uint, expectedValue int, expectedApplied uint) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, replicaId := range replicaIds {
			status, err := cluster.Status(replicaId)
			if err != nil || status.Value != expectedValue || status.LastApplied != expectedApplied {
				return false
			}
		}
		return true
	}, eventuallyTimeout, pollInterval, "replicas %v did not converge to value %d", replicaIds, expectedValue)
}

// assertLogMatching checks that logs sharing an entry with the same index and term share whole prefix
func assertLogMatching(t *testing.T, statuses []replica.ReplicaStatus) {
	t.Helper()
	for _, a := range statuses {
		for _, b := range statuses {
			common := len(a.Log)
			if len(b.Log) < common {
				common = len(b.Log)
			}
			for i := common - 1; i >= 0; i-- {
				if a.Log[i].Term == b.Log[i].Term {
					if diff := deep.Equal(a.Log[:i+1], b.Log[:i+1]); diff != nil {
						t.Fatalf("logs of replicas %d and %d match at index %d but differ before: %s",
							a.Id, b.Id, i+1, diff)
					}
					break
				}
			}
		}
	}
}

// assertLeaderCompleteness checks that leader holds every entry committed by any replica
func assertLeaderCompleteness(t *testing.T, leader replica.ReplicaStatus, statuses []replica.ReplicaStatus) {
	t.Helper()
	for _, status := range statuses {
		require.LessOrEqual(t, int(status.CommitIndex), len(leader.Log),
			"leader %d misses entries committed by %d", leader.Id, status.Id)
		if diff := deep.Equal(leader.Log[:status.CommitIndex], status.Log[:status.CommitIndex]); diff != nil {
			t.Fatalf("leader %d log differs from entries committed by %d: %s", leader.Id, status.Id, diff)
		}
	}
}

// assertValuesMatchLogs checks that value of every replica is the sum of its applied entries
func assertValuesMatchLogs(t *testing.T, statuses []replica.ReplicaStatus) {
	t.Helper()
	for _, status := range statuses {
		sum := 0
		for _, entry := range status.Log[:status.LastApplied] {
			sum += entry.Delta
		}
		require.Equal(t, sum, status.Value, "value of replica %d", status.Id)
	}
}

// safetyMonitor samples statuses in background and records leaders per term and commit index regressions
type safetyMonitor struct {
	cluster    *Cluster
	quit       chan struct{}
	done       sync.WaitGroup
	leaders    map[uint]map[uint]bool
	commits    map[uint]uint
	terms      map[uint]uint
	violations []string
}

func startSafetyMonitor(t *testing.T, cluster *Cluster) *safetyMonitor {
	monitor := &safetyMonitor{
		cluster: cluster,
		quit:    make(chan struct{}),
		leaders: make(map[uint]map[uint]bool),
		commits: make(map[uint]uint),
		terms:   make(map[uint]uint),
	}

	monitor.done.Add(1)
	go func() {
		defer monitor.done.Done()
		for {
			select {
			case <-monitor.quit:
				return
			case <-time.After(time.Millisecond):
				monitor.sample()
			}
		}
	}()

	t.Cleanup(monitor.stop)
	return monitor
}

func (monitor *safetyMonitor) sample() {
	for _, status := range monitor.cluster.Statuses() {
		if status.State == raft_state.Leader {
			if monitor.leaders[status.Term] == nil {
				monitor.leaders[status.Term] = make(map[uint]bool)
			}
			monitor.leaders[status.Term][status.Id] = true
			if len(monitor.leaders[status.Term]) > 1 {
				monitor.violations = append(monitor.violations,
					fmt.Sprintf("multiple leaders in term %d: %v", status.Term, monitor.leaders[status.Term]))
			}
		}

		if status.CommitIndex < monitor.commits[status.Id] {
			monitor.violations = append(monitor.violations, fmt.Sprintf("commit index of replica %d decreased from %d to %d",
				status.Id, monitor.commits[status.Id], status.CommitIndex))
		}
		monitor.commits[status.Id] = status.CommitIndex

		if status.Term < monitor.terms[status.Id] {
			monitor.violations = append(monitor.violations, fmt.Sprintf("term of replica %d decreased from %d to %d",
				status.Id, monitor.terms[status.Id], status.Term))
		}
		monitor.terms[status.Id] = status.Term
	}
}

func (monitor *safetyMonitor) stop() {
	select {
	case <-monitor.quit:
	default:
		close(monitor.quit)
	}
	monitor.done.Wait()
}

// assertSafe stops monitor and fails test on any recorded violation
func (monitor *safetyMonitor) assertSafe(t *testing.T) {
	t.Helper()
	monitor.stop()
	require.Empty(t, monitor.violations)
}
