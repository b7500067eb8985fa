// fwprobe issues low-level transactions to nodes on a FireWire-style bus
// and decodes the replies.
package main

import (
	"github.com/joho/godotenv"
	"github.com/tebeka/atexit"
)

func main() {
	// Missing .env files are fine; flags fall back to built-in defaults.
	_ = godotenv.Load()

	Execute()
	atexit.Exit(0)
}
