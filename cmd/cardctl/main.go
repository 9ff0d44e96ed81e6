// Command cardctl talks to a running card API: it submits contact details,
// sends analytics beacons, downloads the vCard and shares the card link.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
