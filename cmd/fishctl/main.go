package main

import (
	"os"

	"fishsense/internal/cli"
	"fishsense/internal/config"
	"fishsense/internal/logger"
)

func main() {
	cfg := config.Load()
	if err := cli.NewRootCmd(cfg, logger.NewFileLogger(cfg)).Execute(); err != nil {
		os.Exit(1)
	}
}
