package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/tanq16/drainzo/cmd"
)

func main() {
	// Interrupts terminate immediately; resume logic re-derives state
	// from the filesystem, so there is no in-flight cleanup to wait for.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		os.Exit(1)
	}()
	cmd.Execute()
}
