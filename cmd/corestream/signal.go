package main

import (
	"os"
	"os/signal"
	"syscall"
)

// signalCh returns a channel that fires once on SIGINT or SIGTERM, so
// every subcommand shuts down the same way regardless of which actors
// it owns.
func signalCh() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}
