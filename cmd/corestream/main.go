// Command corestream runs the sensor acquisition pipeline's actors,
// one subcommand per actor so the writer and ingester can each run as
// their own OS process, coordinated only through the shared-memory ring
// and the journal seal files.
package main

import (
	"fmt"
	"os"
)

var subcommands = map[string]func([]string) error{
	"session":      runSession,
	"producer-sim": runProducerSim,
	"writer":       runWriter,
	"ingester":     runIngester,
	"stats":        runStats,
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, ok := subcommands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "corestream: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err := cmd(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "corestream %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: corestream <session|producer-sim|writer|ingester|stats> [flags]")
}
