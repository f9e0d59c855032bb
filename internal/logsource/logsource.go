// Package logsource provides line-oriented inputs for the stats collector.
// Sources reassemble newline-delimited lines from a byte stream and deliver
// them in read order.
package logsource

import "github.com/tinytelemetry/logrelay/internal/model"

// LogSource is a unified interface for collector inputs (relay connection, stdin).
type LogSource interface {
	Lines() <-chan model.IngestEnvelope // read-only channel of log lines, closed at end of input
	Stop()                              // graceful shutdown
	Name() string                       // "tcp", "stdin"
}

const (
	// DefaultBuffer is the default channel buffer size for source lines.
	DefaultBuffer = 50_000

	// DefaultMaxLineSize is the default maximum size (in bytes) of a single line.
	DefaultMaxLineSize = 1024 * 1024 // 1MB
)
