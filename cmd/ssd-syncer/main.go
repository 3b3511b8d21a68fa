// Command ssd-syncer keeps directories on multiple machines in agreement
// using a removable SSD as a passive transport hub. See internal/syncengine
// for the sync algorithm and internal/cli for the command surface.
package main

import (
	"os"

	"github.com/ssd-syncer/ssd-syncer/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		cli.ExitOnError(err)
		os.Exit(1)
	}
}
