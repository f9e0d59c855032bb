package logsource

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func collectLines(t *testing.T, src *StdinSource) []string {
	t.Helper()
	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case env, ok := <-src.Lines():
			if !ok {
				return got
			}
			if env.Source != "stdin" {
				t.Fatalf("Source = %q, want stdin", env.Source)
			}
			got = append(got, env.Line)
		case <-timeout:
			t.Fatalf("timed out; lines so far %q", got)
		}
	}
}

func TestReaderSource_LinePolicy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		max   int
		want  []string
	}{
		{"crlf and empty lines", "first\n\nsecond\r\n\r\nthird", 0, []string{"first", "second", "third"}},
		{"oversized middle line", "a\n" + strings.Repeat("y", 100) + "\nb\n", 16, []string{"a", "b"}},
		{"oversized final fragment", "a\n" + strings.Repeat("y", 100), 16, []string{"a"}},
		{"exactly max with crlf", "abcd\r\nabcde\n", 4, []string{"abcd"}},
		{"longer than read buffer", strings.Repeat("z", 100_000) + "\nok\n", 200_000, []string{strings.Repeat("z", 100_000), "ok"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := newReaderSource(context.Background(), strings.NewReader(tt.input), StdinConfig{MaxLineSize: tt.max})
			defer src.Stop()

			got := collectLines(t, src)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("lines = %q, want %q", got, tt.want)
			}
			if src.Err() != nil {
				t.Fatalf("Err() = %v", src.Err())
			}
		})
	}
}

func TestReaderSource_StopWhileReadBlocked(t *testing.T) {
	t.Parallel()
	pr, pw := io.Pipe()
	defer pw.Close()

	src := newReaderSource(context.Background(), pr)
	src.Stop()
	src.Stop()

	if got := collectLines(t, src); len(got) != 0 {
		t.Fatalf("lines after Stop = %q", got)
	}
}

func TestReaderSource_ReadErrorIsReported(t *testing.T) {
	t.Parallel()
	pr, pw := io.Pipe()
	src := newReaderSource(context.Background(), pr)
	defer src.Stop()

	go func() {
		_, _ = pw.Write([]byte("kept\n"))
		_ = pw.CloseWithError(io.ErrUnexpectedEOF)
	}()

	if got := collectLines(t, src); len(got) != 1 || got[0] != "kept" {
		t.Fatalf("lines = %q, want [kept]", got)
	}
	if src.Err() != io.ErrUnexpectedEOF {
		t.Fatalf("Err() = %v, want io.ErrUnexpectedEOF", src.Err())
	}
}
