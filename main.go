package main

import (
	"os"

	"github.com/securesentinels/vuln-search/cmd"
	"github.com/securesentinels/vuln-search/logger"
)

func main() {
	if err := run(); err != nil {
		if !cmd.Reported(err) {
			logger.Logger.Error(err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(false); err != nil {
		return err
	}
	defer logger.Sync()
	return cmd.Execute()
}
