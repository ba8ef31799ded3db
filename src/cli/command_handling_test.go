package cli

import (
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/mblichar/raft-replicas/src/cluster"
	"github.com/mblichar/raft-replicas/src/config"
	"github.com/mblichar/raft-replicas/src/control"
	"github.com/mblichar/raft-replicas/src/logging"
	"github.com/mblichar/raft-replicas/src/timer"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		command  string
		expected userCommand
	}{
		{"help", userCommand{help: true}},
		{"up 1", userCommand{replicaId: 1, message: control.UpMessage()}},
		{"DOWN 2", userCommand{replicaId: 2, message: control.DownMessage()}},
		{"connect 3", userCommand{replicaId: 3, message: control.ConnectMessage()}},
		{"  disconnect   4 ", userCommand{replicaId: 4, message: control.DisconnectMessage()}},
		{"apply 5 -7", userCommand{replicaId: 5, message: control.ApplyMessage(-7)}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.command, func(t *testing.T) {
			parsed, err := parseCommand(testCase.command)
			require.NoError(t, err)
			if diff := deep.Equal(parsed, testCase.expected); diff != nil {
				t.Fatalf("expected parsed command to match, got the following differences %s", diff)
			}
		})
	}

	for _, command := range []string{"", "jump 1", "up", "up 1 2", "up x", "up -1", "apply 1", "apply 1 x", "apply x 1"} {
		t.Run("rejects '"+command+"'", func(t *testing.T) {
			_, err := parseCommand(command)
			require.ErrorIs(t, err, ErrInvalidCommand)
		})
	}
}

func createTestContext() *appContext {
	logs := make(chan logging.LoggerEntry, 100)
	return &appContext{
		cluster: cluster.CreateCluster(config.DefaultConfig(), timer.RegularTimeoutFactory{}, nil),
		logs:    logs,
	}
}

func TestHandleCommand(t *testing.T) {
	t.Run("logs help", func(t *testing.T) {
		context := createTestContext()
		logger := logging.CreateLogger("[COMMAND]", context.logs)

		handleCommand("help", context, logger)

		entry := <-context.logs
		require.Equal(t, "[COMMAND] Available commands:", entry.Messages[0])
	})

	t.Run("logs error and help for unknown replica", func(t *testing.T) {
		context := createTestContext()
		logger := logging.CreateLogger("[COMMAND]", context.logs)

		handleCommand("down 9", context, logger)

		entry := <-context.logs
		require.Len(t, entry.Messages, 1)
		require.True(t, strings.HasPrefix(entry.Messages[0], "[COMMAND] 'down 9' - "), entry.Messages[0])
		require.Contains(t, entry.Messages[0], cluster.ErrUnknownReplica.Error())

		entry = <-context.logs
		require.Equal(t, "[COMMAND] Available commands:", entry.Messages[0])
	})

	t.Run("forwards control message to replica", func(t *testing.T) {
		context := createTestContext()
		context.cluster.Start()
		t.Cleanup(context.cluster.Stop)
		logger := logging.CreateLogger("[COMMAND]", context.logs)

		handleCommand("disconnect 2", context, logger)

		entry := <-context.logs
		require.Equal(t, []string{"[COMMAND] disconnect 2"}, entry.Messages)
		require.Eventually(t, func() bool {
			status, err := context.cluster.Status(2)
			return err == nil && !status.Connected
		}, timeoutForStatus, pollInterval)
	})

	t.Run("logs apply result", func(t *testing.T) {
		context := createTestContext()
		context.cluster.Start()
		t.Cleanup(context.cluster.Stop)
		logger := logging.CreateLogger("[COMMAND]", context.logs)

		handleCommand("apply 1 5", context, logger)

		entry := <-context.logs
		require.Equal(t, []string{"[COMMAND] apply 1 5"}, entry.Messages)
		entry = <-context.logs
		require.Len(t, entry.Messages, 1)
		require.True(t, strings.HasPrefix(entry.Messages[0], "[COMMAND] 'apply 1 5' result - success: "), entry.Messages[0])
	})
}
