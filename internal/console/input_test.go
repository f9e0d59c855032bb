package console

import (
	"testing"

	"github.com/tinytelemetry/logrelay/internal/model"
)

func TestParseInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Input
	}{
		{"plain message", Input{Text: "plain message"}},
		{"exit", Input{Text: "exit"}},
		{"error! disk full", Input{Text: "disk full", Level: model.LevelError, HasLevel: true}},
		{"  WARNING  !  spaced  ", Input{Text: "spaced", Level: model.LevelWarning, HasLevel: true}},
		{"debug!chlevel", Input{Text: "chlevel", Level: model.LevelDebug, HasLevel: true}},
		{"info!a!b", Input{Text: "a!b", Level: model.LevelInfo, HasLevel: true}},
		{"loud! hey", Input{Text: "hey", Level: model.LevelInfo, HasLevel: true, UnknownLevel: "loud"}},
		{"warn! alias", Input{Text: "alias", Level: model.LevelInfo, HasLevel: true, UnknownLevel: "warn"}},
		{"ERR! alias", Input{Text: "alias", Level: model.LevelInfo, HasLevel: true, UnknownLevel: "err"}},
		{"!bare", Input{Text: "bare", Level: model.LevelInfo, HasLevel: true, UnknownLevel: ""}},
	}
	for _, tt := range tests {
		if got := ParseInput(tt.in); got != tt.want {
			t.Errorf("ParseInput(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
