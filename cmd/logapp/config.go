package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/tinytelemetry/logrelay/internal/cliutil"
	"github.com/tinytelemetry/logrelay/internal/emitter"
	"github.com/tinytelemetry/logrelay/internal/logparse"
	"github.com/tinytelemetry/logrelay/internal/model"
)

const synopsis = "logapp [--mode file|socket|both] [--file PATH] [--level LEVEL] [flags]"

// appConfig is the producer's runtime configuration.
type appConfig struct {
	Mode         string `mapstructure:"mode"`
	File         string `mapstructure:"file"`
	Level        string `mapstructure:"level"`
	DefaultLevel string `mapstructure:"default-level"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	LogFile      string `mapstructure:"log-file"`
	Version      bool   `mapstructure:"version"`
	ConfigPath   string `mapstructure:"-"`

	mode         emitter.Mode
	level        model.Level
	defaultLevel model.Level
}

// RelayAddr is the relay address the socket sink dials.
func (c appConfig) RelayAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func newFlagSet() *pflag.FlagSet {
	fs := cliutil.NewFlagSet("logapp")
	fs.String("mode", "both", "output: file, socket or both")
	fs.String("file", emitter.DefaultFilePath, "log file path for file output")
	fs.String("level", "info", "minimum level written (debug, info, warning, error)")
	fs.String("default-level", "info", "level for input without a level prefix")
	fs.String("host", model.DefaultRelayHost, "relay host (IP address)")
	fs.Int("port", model.DefaultRelayPort, "relay port")
	fs.String("log-file", "", "also write runtime logs to this rotating file")
	fs.Bool("version", false, "print version information")
	return fs
}

func loadConfig(fs *pflag.FlagSet, args []string) (appConfig, error) {
	var cfg appConfig

	v, err := cliutil.LoadViper(fs, args)
	if err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.mode, err = emitter.ParseMode(cfg.Mode); err != nil {
		return cfg, err
	}
	var ok bool
	if cfg.level, ok = logparse.NormalizeLevel(cfg.Level); !ok {
		return cfg, fmt.Errorf("invalid level %q (want debug, info, warning or error)", cfg.Level)
	}
	if cfg.defaultLevel, ok = logparse.NormalizeLevel(cfg.DefaultLevel); !ok {
		return cfg, fmt.Errorf("invalid default-level %q (want debug, info, warning or error)", cfg.DefaultLevel)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port: %d (want 1-65535)", cfg.Port)
	}
	return cfg, nil
}
