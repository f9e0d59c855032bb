package cliutil

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownGrace is how long a graceful shutdown may take after the first signal.
const ShutdownGrace = 10 * time.Second

// HandleSignals cancels the context on SIGINT or SIGTERM. A second signal, or
// the grace period running out, exits the process. The returned func stops
// signal delivery and waits for the watcher goroutine to end.
func HandleSignals(cancel context.CancelFunc) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	exited := watchSignals(sigCh, done, cancel, ShutdownGrace, os.Exit)

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
			<-exited
		})
	}
}

// watchSignals runs the shutdown sequence until done is closed. The returned
// channel is closed when the watcher returns.
func watchSignals(sigCh <-chan os.Signal, done <-chan struct{}, cancel context.CancelFunc, grace time.Duration, exit func(int)) <-chan struct{} {
	exited := make(chan struct{})
	go func() {
		defer close(exited)

		select {
		case <-sigCh:
		case <-done:
			return
		}
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		deadline := time.NewTimer(grace)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		case <-done:
			return
		}
		exit(1)
	}()
	return exited
}
