package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mblichar/raft-replicas/src/control"
	"github.com/mblichar/raft-replicas/src/logging"
	"github.com/rivo/tview"
)

var ErrInvalidCommand = errors.New("invalid command")

type userCommand struct {
	help      bool
	replicaId uint
	message   control.ControlMessage
}

func listenForUserCommands(inputField *tview.InputField, context *appContext, quit chan struct{}) {
	logger := logging.CreateLogger("[green][COMMAND[][white]", context.logs)
	commandsChannel := make(chan string, 100)
	inputField.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			command := inputField.GetText()
			if len(command) > 0 {
				commandsChannel <- command
			}
			inputField.SetText("")
		}
	})

	for {
		select {
		case command := <-commandsChannel:
			handleCommand(command, context, logger)
		case <-quit:
			return
		}
	}
}

func parseCommand(command string) (userCommand, error) {
	tokens := strings.Fields(command)
	if len(tokens) == 0 {
		return userCommand{}, fmt.Errorf("%w: empty command", ErrInvalidCommand)
	}

	operation := strings.ToLower(tokens[0])
	if operation == "help" {
		return userCommand{help: true}, nil
	}

	var message control.ControlMessage
	expectedTokens := 2
	switch operation {
	case "up":
		message = control.UpMessage()
	case "down":
		message = control.DownMessage()
	case "connect":
		message = control.ConnectMessage()
	case "disconnect":
		message = control.DisconnectMessage()
	case "apply":
		expectedTokens = 3
	default:
		return userCommand{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidCommand, tokens[0])
	}

	if len(tokens) != expectedTokens {
		return userCommand{}, fmt.Errorf("%w: %s expects %d arguments", ErrInvalidCommand, operation, expectedTokens-1)
	}

	replicaId, err := strconv.ParseUint(tokens[1], 10, 0)
	if err != nil {
		return userCommand{}, fmt.Errorf("%w: replica id %q: %v", ErrInvalidCommand, tokens[1], err)
	}

	if operation == "apply" {
		delta, err := strconv.Atoi(tokens[2])
		if err != nil {
			return userCommand{}, fmt.Errorf("%w: delta %q: %v", ErrInvalidCommand, tokens[2], err)
		}
		message = control.ApplyMessage(delta)
	}

	return userCommand{replicaId: uint(replicaId), message: message}, nil
}

func handleCommand(command string, context *appContext, logger *logging.Logger) {
	parsed, err := parseCommand(command)
	if err != nil {
		logInvalidCommand(command, err, logger)
		return
	}

	if parsed.help {
		logHelp(logger)
		return
	}

	if parsed.message.Kind == control.Apply {
		logger.Log(command)
		// Apply waits for replica's answer, don't block reading next commands
		go func() {
			result, err := context.cluster.Apply(parsed.replicaId, parsed.message.Delta)
			if err != nil {
				logInvalidCommand(command, err, logger)
				return
			}
			logger.Logf("'%s' result - success: %t, result: %s, leader: %d", command, result.Success, result.Result, result.LeaderId)
		}()
		return
	}

	if err := context.cluster.Control(parsed.replicaId, parsed.message); err != nil {
		logInvalidCommand(command, err, logger)
		return
	}
	logger.Log(command)
}

func logInvalidCommand(command string, err error, logger *logging.Logger) {
	logger.Logf("'%s' - %v", command, err)
	logHelp(logger)
}

func logHelp(logger *logging.Logger) {
	logger.LogMultiple([]string{
		"Available commands:",
		"apply [REPLICA_ID[] [DELTA[] (e.g. apply 2 -5) - asks replica to append delta, accepted only by leader",
		"down [REPLICA_ID[] (e.g. down 2) - stops replica, it keeps its term and log",
		"up [REPLICA_ID[] (e.g. up 2) - restarts stopped replica as follower",
		"disconnect [REPLICA_ID[] (e.g. disconnect 2) - drops all messages sent and received by replica",
		"connect [REPLICA_ID[] (e.g. connect 2) - reconnects replica",
		"help - displays this information",
	})
}
