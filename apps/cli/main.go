package main

import (
	"log"
	"os"

	"github.com/kymoh/darasa/core"
	"github.com/kymoh/darasa/core/engine"
	"github.com/kymoh/darasa/services/api"
	logsvc "github.com/kymoh/darasa/services/logger"
	filesession "github.com/kymoh/darasa/storage/session/file"
	inmemstate "github.com/kymoh/darasa/storage/state/inmem"
)

func main() {
	conf, err := core.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	std := log.New(os.Stderr, "darasa: ", log.LstdFlags)

	var logger core.Logger
	if conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = logsvc.NewConsoleLogger(std)
	}

	sess, err := filesession.Open(conf.SessionFile)
	if err != nil {
		std.Fatalf("opening session store: %v", err)
	}

	state := inmemstate.New()
	client := api.NewClient(conf, sess, logger)
	eng := engine.New(client, state.Mirror(), sess, logger)

	cli := &commandLine{eng: eng, sess: sess, state: state, out: os.Stdout}
	if err := cli.run(os.Args); err != nil && err != errHelp {
		std.Fatal(err)
	}
}
