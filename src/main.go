package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mblichar/raft-replicas/src/cli"
	"github.com/mblichar/raft-replicas/src/cluster"
	"github.com/mblichar/raft-replicas/src/config"
	"github.com/mblichar/raft-replicas/src/logging"
	"github.com/mblichar/raft-replicas/src/timer"
)

func main() {
	configPath := flag.String("config", "", "path to YAML cluster config, defaults are used when empty")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	logs := make(chan logging.LoggerEntry, 1000)
	c := cluster.CreateCluster(cfg, timer.RegularTimeoutFactory{}, logs)

	if err := cli.StartCli(c, logs); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
