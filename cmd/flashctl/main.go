// Command flashctl runs maintenance tasks against the configured store
package main

import (
	"os"

	"github.com/yigit/flashclass/internal/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("flashctl failed")
		os.Exit(1)
	}
}
