package cli

import (
	"fmt"
	"time"

	"github.com/mblichar/raft-replicas/src/cluster"
	"github.com/mblichar/raft-replicas/src/logging"
	"github.com/rivo/tview"
)

type appContext struct {
	cluster *cluster.Cluster
	logs    chan logging.LoggerEntry
}

// StartCli starts the cluster and blocks until terminal application exits.
func StartCli(c *cluster.Cluster, logs chan logging.LoggerEntry) error {
	context := &appContext{cluster: c, logs: logs}

	c.Start()
	defer c.Stop()

	app, appQuit := setupApp(context)
	defer close(appQuit)

	return app.Run()
}

func setupApp(context *appContext) (*tview.Application, chan struct{}) {
	flex := tview.NewFlex()
	flex.SetDirection(tview.FlexRow)

	replicasStateTextView := tview.NewTextView()
	replicasStateTextView.SetDynamicColors(true)
	replicasStateTextView.SetBorder(true).SetTitle(fmt.Sprintf("Replicas State (run %s)", context.cluster.RunId))
	flex.AddItem(replicasStateTextView, 0, 3, false)

	configTextView := tview.NewTextView()
	configTextView.SetBorder(true).SetTitle("Config")
	flex.AddItem(configTextView, 3, 1, false)

	loggerTextView := tview.NewTextView()
	loggerTextView.SetDynamicColors(true)
	loggerTextView.SetBorder(true).SetTitle("Logs")
	flex.AddItem(loggerTextView, 0, 3, false)

	commandsInputField := tview.NewInputField()
	commandsInputField.SetBorder(true).SetTitle("Commands Input")
	flex.AddItem(commandsInputField, 3, 1, true)

	appQuit := make(chan struct{})

	app := tview.NewApplication().SetRoot(flex, true)

	go listenForUserCommands(commandsInputField, context, appQuit)
	go renderLogs(context.logs, loggerTextView, appQuit)
	go func() {
		for {
			select {
			case <-time.After(100 * time.Millisecond):
				renderReplicasState(context.cluster, replicasStateTextView)
				renderConfig(context, configTextView)
				app.Draw()
			case <-appQuit:
				return
			}
		}
	}()
	return app, appQuit
}
