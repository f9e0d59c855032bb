package model

import "time"

// Shared defaults used by the relay, collector and producer binaries.
const (
	DefaultRelayPort      = 9999
	DefaultRelayHost      = "127.0.0.1"
	DefaultBindHost       = "0.0.0.0"
	DefaultReportEvery    = 5
	DefaultReportInterval = 10 * time.Second
	MinReportInterval     = 2 * time.Second
	MaxReportInterval     = time.Hour

	// RetentionHorizon is how long a timestamp stays in the recent-messages window.
	RetentionHorizon = time.Hour

	// TimestampLayout is the wire timestamp format (YYYY-MM-DD HH:MM:SS).
	TimestampLayout = "2006-01-02 15:04:05"
)
