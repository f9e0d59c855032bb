package model

import (
	"fmt"
	"time"
)

// Level is the severity of a log line. Levels are ordered: Debug < Info < Warning < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// NumLevels is the number of defined levels.
const NumLevels = 4

// Levels lists every level in ascending order.
var Levels = [NumLevels]Level{LevelDebug, LevelInfo, LevelWarning, LevelError}

var levelNames = [NumLevels]string{"Debug", "Info", "Warning", "Error"}

// String returns the wire token for the level ("Debug", "Info", "Warning", "Error").
func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool {
	return l >= LevelDebug && l <= LevelError
}

// MarshalText lets Level be used as a JSON object key.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("model: invalid level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

// Entry is one structured log line parsed from the wire.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Length    int // byte length of Message
}
