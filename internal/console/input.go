// Package console reads operator input, one message or command per line,
// and forwards it to an emitter.
package console

import (
	"strings"

	"github.com/tinytelemetry/logrelay/internal/model"
)

// Command names recognized in the message text.
const (
	CmdExit      = "exit"
	CmdChLevel   = "chlevel"
	CmdChDefault = "chdefault"
)

// Input is one parsed line of operator input.
type Input struct {
	Text string
	// Level is the explicit level. HasLevel is false when the line had no
	// "<level>!" prefix and the emitter default applies.
	Level    model.Level
	HasLevel bool
	// UnknownLevel holds a prefix that named no level; Level is Info then.
	UnknownLevel string
}

// prefixLevels are the only accepted prefixes; aliases such as "warn" are
// reported as undefined.
var prefixLevels = map[string]model.Level{
	"debug":   model.LevelDebug,
	"info":    model.LevelInfo,
	"warning": model.LevelWarning,
	"error":   model.LevelError,
}

// ParseInput splits "level! text" input. Without a '!' the whole line is the
// message. The prefix is matched case-insensitively after trimming.
func ParseInput(s string) Input {
	pos := strings.IndexByte(s, '!')
	if pos < 0 {
		return Input{Text: s}
	}

	in := Input{
		Text:     strings.TrimSpace(s[pos+1:]),
		HasLevel: true,
	}
	prefix := strings.ToLower(strings.TrimSpace(s[:pos]))
	lvl, ok := prefixLevels[prefix]
	if !ok {
		in.Level = model.LevelInfo
		in.UnknownLevel = prefix
		return in
	}
	in.Level = lvl
	return in
}
