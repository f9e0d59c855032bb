package main

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := loadConfig(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.RelayAddr() != "127.0.0.1:9999" {
		t.Errorf("RelayAddr() = %q", cfg.RelayAddr())
	}
	if cfg.Every != 5 || cfg.ReportInterval() != 10*time.Second {
		t.Errorf("N/T = %d/%s, want 5/10s", cfg.Every, cfg.ReportInterval())
	}
}

func TestLoadConfig_ShortFlags(t *testing.T) {
	t.Parallel()
	cfg, err := loadConfig(newFlagSet(), []string{"--host", "10.1.2.3", "--port", "7000", "-N", "3", "-T", "2"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.RelayAddr() != "10.1.2.3:7000" || cfg.Every != 3 || cfg.Interval != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"N zero", []string{"-N", "0"}, "invalid N"},
		{"N negative", []string{"--every", "-4"}, "invalid N"},
		{"N not a number", []string{"-N", "five"}, "invalid argument"},
		{"T below range", []string{"-T", "1"}, "invalid T"},
		{"T above range", []string{"-T", "3601"}, "invalid T"},
		{"T not a number", []string{"-T", "10s"}, "invalid argument"},
		{"port zero", []string{"--port", "0"}, "invalid port"},
		{"port too large", []string{"--port", "70000"}, "invalid port"},
		{"unknown flag", []string{"--verbose"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := loadConfig(newFlagSet(), tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig_BoundsInclusive(t *testing.T) {
	t.Parallel()
	for _, args := range [][]string{{"-T", "2"}, {"-T", "3600"}, {"-N", "1"}, {"--port", "65535"}} {
		if _, err := loadConfig(newFlagSet(), args); err != nil {
			t.Errorf("loadConfig(%v): %v", args, err)
		}
	}
}

func TestSelectInputPlugin(t *testing.T) {
	t.Parallel()
	if p := selectInputPlugin(InputPluginConfig{RelayAddr: "127.0.0.1:9999"}); p.Name() != "tcp" {
		t.Errorf("default plugin = %q, want tcp", p.Name())
	}
	if p := selectInputPlugin(InputPluginConfig{RelayAddr: "127.0.0.1:9999", Stdin: true}); p.Name() != "stdin" {
		t.Errorf("--stdin plugin = %q, want stdin", p.Name())
	}
}
