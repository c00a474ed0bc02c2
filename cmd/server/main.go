package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/checkpay/internal/buildinfo"
	"github.com/dmitrijs2005/checkpay/internal/logging"
	"github.com/dmitrijs2005/checkpay/internal/server"
	"github.com/dmitrijs2005/checkpay/internal/server/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		return 2
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	if err := server.NewApp(cfg, logger).Run(context.Background()); err != nil {
		return 1
	}
	return 0
}
