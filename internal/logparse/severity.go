package logparse

import (
	"strings"

	"github.com/tinytelemetry/logrelay/internal/model"
)

// ParseLevel maps an exact wire token to its level. Matching is case-sensitive:
// only "Debug", "Info", "Warning" and "Error" are accepted.
func ParseLevel(token string) (model.Level, bool) {
	switch token {
	case "Debug":
		return model.LevelDebug, true
	case "Info":
		return model.LevelInfo, true
	case "Warning":
		return model.LevelWarning, true
	case "Error":
		return model.LevelError, true
	}
	return 0, false
}

// NormalizeLevel converts loosely typed severity names (any case, common
// abbreviations) to a level. It is meant for human input, not for the wire.
func NormalizeLevel(severity string) (model.Level, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(severity))

	switch normalized {
	case "DEBUG", "DEBU", "DBG", "DEB", "TRACE", "TRC":
		return model.LevelDebug, true
	case "INFO", "INFORMATION", "INF":
		return model.LevelInfo, true
	case "WARN", "WARNING", "WRNG", "WRN":
		return model.LevelWarning, true
	case "ERROR", "ERR", "ERRO", "FATAL", "CRITICAL", "CRIT":
		return model.LevelError, true
	}
	return model.LevelInfo, false
}
