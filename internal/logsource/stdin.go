package logsource

import (
	"context"
	"io"
	"os"
)

// StdinConfig holds tunable parameters for the stdin source.
type StdinConfig struct {
	BufferSize  int
	MaxLineSize int
}

// StdinSource reads log lines from stdin, e.g. a log file piped into the
// collector. It shares line handling with TCPSource.
type StdinSource struct {
	*stream
}

// NewStdinSource starts reading stdin in the background.
func NewStdinSource(ctx context.Context, conf ...StdinConfig) *StdinSource {
	return newReaderSource(ctx, os.Stdin, conf...)
}

func newReaderSource(ctx context.Context, r io.Reader, conf ...StdinConfig) *StdinSource {
	bufferSize := DefaultBuffer
	maxLineSize := DefaultMaxLineSize
	if len(conf) > 0 {
		if conf[0].BufferSize > 0 {
			bufferSize = conf[0].BufferSize
		}
		if conf[0].MaxLineSize > 0 {
			maxLineSize = conf[0].MaxLineSize
		}
	}
	return &StdinSource{stream: startStream(ctx, "stdin", r, bufferSize, maxLineSize)}
}
