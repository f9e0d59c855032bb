package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tinytelemetry/logrelay/internal/emitter"
	"github.com/tinytelemetry/logrelay/internal/logsource"
	"github.com/tinytelemetry/logrelay/internal/model"
	"github.com/tinytelemetry/logrelay/internal/relay"
)

func waitEventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out: %s", msg)
}

// TestEmitterRelayCollector runs a producer, the relay and the collector over
// loopback and checks the collector's report.
func TestEmitterRelayCollector(t *testing.T) {
	t.Parallel()

	server := relay.NewServer("127.0.0.1:0")
	if err := server.Start(); err != nil {
		t.Fatalf("relay Start: %v", err)
	}
	relayStopped := false
	defer func() {
		if !relayStopped {
			_ = server.Stop()
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := logsource.DialTCP(ctx, server.Addr())
	if err != nil {
		t.Fatalf("DialTCP: %v", err)
	}
	defer src.Stop()
	waitEventually(t, 2*time.Second, func() bool { return server.PeerCount() == 1 }, "collector registered")

	var out lockedBuffer
	done := make(chan error, 1)
	go func() { done <- collect(ctx, testConfig(2), src, &out) }()

	em, err := emitter.New(emitter.Config{
		Mode:         emitter.ModeSocket,
		Addr:         server.Addr(),
		Level:        model.LevelDebug,
		DefaultLevel: model.LevelInfo,
	})
	if err != nil {
		t.Fatalf("emitter.New: %v", err)
	}
	defer em.Close()
	waitEventually(t, 2*time.Second, func() bool { return server.PeerCount() == 2 }, "producer registered")

	if err := em.Log("hello", model.LevelInfo); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := em.Log("oops!!", model.LevelError); err != nil {
		t.Fatalf("Log: %v", err)
	}

	waitEventually(t, 5*time.Second, func() bool {
		return strings.Contains(out.String(), "Total Messages: 2")
	}, "count-triggered report")

	report := out.String()
	for _, want := range []string{"Info: 1\n", "Error: 1\n", "Smallest length: 5\n", "Largest length: 6\n", "Average length: 5\n", "Recent messages: 2\n"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	relayStopped = true
	if err := server.Stop(); err != nil {
		t.Fatalf("relay Stop: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("collect: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("collector did not finish after relay shutdown")
	}
	if !strings.Contains(out.String(), "Connection lost") {
		t.Errorf("output missing connection-lost notice:\n%s", out.String())
	}
}
