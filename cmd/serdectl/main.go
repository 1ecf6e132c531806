package main

import (
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/lk2023060901/garden-serde/internal/cli"
	"github.com/lk2023060901/garden-serde/pkg/log"
)

func main() {
	// GOMAXPROCS follows the container CPU quota.
	if _, err := maxprocs.Set(maxprocs.Logger(log.S().Debugf)); err != nil {
		log.S().Warnf("set GOMAXPROCS failed: %v", err)
	}
	cli.Execute()
}
