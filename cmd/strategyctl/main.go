package main

import (
	"os"

	"github.com/simonbindefeld/merkleproof-service/internal/logger"
)

func main() {
	err := newRootCmd().Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
