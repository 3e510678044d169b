package main

import (
	"log"
	"os"

	"github.com/trezcool/ripoti/core"
	"github.com/trezcool/ripoti/services/reportapi"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// start CLI
	cli := commandLine{
		client: reportapi.NewClient(conf.API.BaseURL),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
