package emitter

import (
	"fmt"
	"strings"
)

// Mode selects where emitted lines are written.
type Mode int

const (
	ModeFile Mode = iota + 1
	ModeSocket
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeSocket:
		return "socket"
	case ModeBoth:
		return "both"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) writesFile() bool   { return m == ModeFile || m == ModeBoth }
func (m Mode) writesSocket() bool { return m == ModeSocket || m == ModeBoth }

// ParseMode accepts "file", "socket" or "both" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file":
		return ModeFile, nil
	case "socket":
		return ModeSocket, nil
	case "both":
		return ModeBoth, nil
	}
	return 0, fmt.Errorf("unknown output mode %q (want file, socket or both)", s)
}
