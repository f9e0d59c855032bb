package logparse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tinytelemetry/logrelay/internal/model"
)

var (
	// ErrNoMatch is returned for lines that do not have the "<ts> [<Level>] <msg>" shape.
	ErrNoMatch = errors.New("logparse: line does not match wire format")

	// ErrBadTimestamp is returned when the timestamp field is not a valid calendar time.
	ErrBadTimestamp = errors.New("logparse: invalid timestamp")
)

// UnknownLevelError is returned when a line has the wire shape but its level
// token is not one of the four known names.
type UnknownLevelError struct {
	Token string
}

func (e *UnknownLevelError) Error() string {
	return fmt.Sprintf("logparse: unknown level %q", e.Token)
}

// lineRegex matches "<YYYY-MM-DD HH:MM:SS> [<token>] <message>". The message group is
// optional so that "... [Info]" with nothing after the bracket is an empty message.
var lineRegex = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) \[([^\]]*)\](?: (.*))?$`)

// ParseLine extracts an entry from one wire line (without its trailing newline).
// Timestamps are read in the local time zone.
func ParseLine(line string) (model.Entry, error) {
	m := lineRegex.FindStringSubmatch(line)
	if m == nil {
		return model.Entry{}, ErrNoMatch
	}

	ts, err := time.ParseInLocation(model.TimestampLayout, m[1], time.Local)
	if err != nil {
		return model.Entry{}, fmt.Errorf("%w: %q", ErrBadTimestamp, m[1])
	}

	level, ok := ParseLevel(m[2])
	if !ok {
		return model.Entry{}, &UnknownLevelError{Token: m[2]}
	}

	msg := m[3]
	return model.Entry{
		Timestamp: ts,
		Level:     level,
		Message:   msg,
		Length:    len(msg),
	}, nil
}

// FormatLine renders an entry in wire format, including the trailing newline.
// Embedded newlines in msg are replaced with spaces so one call is one line.
func FormatLine(ts time.Time, level model.Level, msg string) string {
	if strings.ContainsAny(msg, "\r\n") {
		msg = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(msg)
	}
	var b strings.Builder
	b.Grow(len(model.TimestampLayout) + len(msg) + 12)
	b.WriteString(ts.Format(model.TimestampLayout))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	b.WriteByte('\n')
	return b.String()
}
