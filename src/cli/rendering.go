package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/mblichar/raft-replicas/src/cluster"
	"github.com/mblichar/raft-replicas/src/logging"
	"github.com/mblichar/raft-replicas/src/raft_messages"
	"github.com/mblichar/raft-replicas/src/raft_state"
	"github.com/mblichar/raft-replicas/src/replica"
	"github.com/rivo/tview"
)

func renderReplicasState(c *cluster.Cluster, textView *tview.TextView) {
	writer := textView.BatchWriter()
	writer.Clear()
	defer writer.Close()

	for _, status := range c.Statuses() {
		fmt.Fprintf(writer, "%s\n", formatStatus(status))
		fmt.Fprintf(writer, "LOG: %s\n", raft_messages.LogEntriesToString(status.Log))
		fmt.Fprintf(writer, "\n")
	}
}

func formatStatus(status replica.ReplicaStatus) string {
	connection := "CONNECTED"
	if !status.Connected {
		connection = "DISCONNECTED"
	}

	return fmt.Sprintf("[%s]REPLICA: %d  ROLE: %10s[white]  %-12s  TERM: %2d  VOTED: %2d  COMMIT: %2d  APPLIED: %2d  VALUE: %4d  LEADER: %2d",
		roleColor(status.State),
		status.Id,
		status.State,
		connection,
		status.Term,
		status.VotedFor,
		status.CommitIndex,
		status.LastApplied,
		status.Value,
		status.LeaderId,
	)
}

func roleColor(role raft_state.Role) string {
	switch role {
	case raft_state.Leader:
		return "green"
	case raft_state.Candidate:
		return "yellow"
	case raft_state.Dead:
		return "red"
	default:
		return "white"
	}
}

func renderLogs(logs chan logging.LoggerEntry, textView *tview.TextView, quit chan struct{}) {
	start := time.Now()
	for {
		select {
		case entry := <-logs:
			writer := textView.BatchWriter()
			prefix := formatTimestamp(start, entry.Timestamp)
			for _, message := range entry.Messages {
				fmt.Fprintf(writer, "[white]%s %s\n", prefix, message)
				prefix = strings.Repeat(" ", len(prefix))
			}
			writer.Close()
		case <-quit:
			return
		}
	}
}

func renderConfig(context *appContext, textView *tview.TextView) {
	writer := textView.BatchWriter()
	writer.Clear()
	defer writer.Close()

	cfg := context.cluster.Config
	fmt.Fprintf(writer,
		"ELECTION TIMEOUT: %d-%dms  HEARTBEAT TIMEOUT: %dms  DROP PROBABILITY: %d%%  REPLICAS: %v",
		cfg.ElectionTimeoutMin, cfg.ElectionTimeoutMax, cfg.HeartbeatTimeout, cfg.DropProbability, cfg.ReplicaIds)
}

func formatTimestamp(start time.Time, end time.Time) string {
	diff := end.Sub(start)
	return fmt.Sprintf("[%02d:%02d:%03d]", int(diff.Minutes()), int(diff.Seconds())%60, diff.Milliseconds()%1000)
}
