package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tinytelemetry/logrelay/internal/model"
)

type chanSource struct {
	ch chan model.IngestEnvelope
}

func newChanSource(lines ...string) *chanSource {
	s := &chanSource{ch: make(chan model.IngestEnvelope, len(lines))}
	for _, l := range lines {
		s.ch <- model.IngestEnvelope{Source: "test", Line: l}
	}
	return s
}

func (s *chanSource) Lines() <-chan model.IngestEnvelope { return s.ch }
func (s *chanSource) Stop()                              {}
func (s *chanSource) Name() string                       { return "test" }

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(every int) appConfig {
	return appConfig{Host: "127.0.0.1", Port: 9999, Every: every, Interval: 3600}
}

func TestCollect_CountTriggerReport(t *testing.T) {
	t.Parallel()
	src := newChanSource(
		"2024-01-01 10:00:00 [Info] hello",
		"not a log line",
		"2024-01-01 10:00:01 [Error] oops!!",
	)
	close(src.ch)

	var out lockedBuffer
	if err := collect(context.Background(), testConfig(2), src, &out); err != nil {
		t.Fatalf("collect: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"--- Log statistics ---",
		"Total Messages: 2\n",
		"Debug: 0\n",
		"Info: 1\n",
		"Warning: 0\n",
		"Error: 1\n",
		"Largest length: 6\n",
		"Smallest length: 5\n",
		"Average length: 5\n",
		"------------------------",
		"Stats collection is done.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "Total Messages:"); n != 1 {
		t.Errorf("got %d reports, want 1", n)
	}
}

func TestCollect_NoReportBelowThreshold(t *testing.T) {
	t.Parallel()
	src := newChanSource("2024-01-01 10:00:00 [Info] hello")
	close(src.ch)

	var out lockedBuffer
	if err := collect(context.Background(), testConfig(5), src, &out); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if strings.Contains(out.String(), "Total Messages:") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}

func TestCollect_StopsOnCancel(t *testing.T) {
	t.Parallel()
	src := &chanSource{ch: make(chan model.IngestEnvelope)}
	ctx, cancel := context.WithCancel(context.Background())

	var out lockedBuffer
	done := make(chan error, 1)
	go func() { done <- collect(ctx, testConfig(5), src, &out) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("collect: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("collect did not return after cancel")
	}
}

func TestCollect_EchoesCountedLines(t *testing.T) {
	t.Parallel()
	cfg := testConfig(100)
	cfg.Echo = true
	src := newChanSource("2024-01-01 10:00:00 [Warning] careful")
	close(src.ch)

	var out lockedBuffer
	if err := collect(context.Background(), cfg, src, &out); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if !strings.Contains(out.String(), "2024-01-01 10:00:00 [Warning] careful\n") {
		t.Fatalf("echo missing:\n%s", out.String())
	}
}
