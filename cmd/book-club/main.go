package main

import (
	"os"

	"book-club-go/pkg/logger"
)

func main() {
	log := logger.NewFromEnv()
	if err := newRootCommand(log).Execute(); err != nil {
		log.Critical("app: command failed", "err", err)
		os.Exit(1)
	}
}
