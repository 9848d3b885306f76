// Command mash-udc listens for user-directed commissioning announcements.
package main

import (
	"os"

	"github.com/mash-protocol/mash-udc/cmd/mash-udc/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
