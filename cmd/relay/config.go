package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/tinytelemetry/logrelay/internal/cliutil"
	"github.com/tinytelemetry/logrelay/internal/model"
)

const (
	defaultAPIAddr      = "127.0.0.1:9998"
	defaultWriteTimeout = 5 * time.Second
	synopsis            = "relay [--host ADDR] [--port PORT] [flags]"
)

// appConfig is the relay's runtime configuration.
type appConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Echo         bool          `mapstructure:"echo"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	APIEnabled   bool          `mapstructure:"api-enabled"`
	APIAddr      string        `mapstructure:"api-addr"`
	LogFile      string        `mapstructure:"log-file"`
	Version      bool          `mapstructure:"version"`
	ConfigPath   string        `mapstructure:"-"`
}

// ListenAddr is the relay bind address.
func (c appConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func newFlagSet() *pflag.FlagSet {
	fs := cliutil.NewFlagSet("relay")
	fs.String("host", model.DefaultBindHost, "interface to listen on")
	fs.Int("port", model.DefaultRelayPort, "TCP port to listen on")
	fs.Bool("echo", false, "print every forwarded line to stdout")
	fs.Duration("write-timeout", defaultWriteTimeout, "per-peer write deadline (0 disables)")
	fs.Bool("api-enabled", false, "serve the HTTP status API")
	fs.String("api-addr", defaultAPIAddr, "HTTP status API listen address")
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

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port: %d (want 1-65535)", cfg.Port)
	}
	if cfg.WriteTimeout < 0 {
		return cfg, fmt.Errorf("invalid write-timeout: %s", cfg.WriteTimeout)
	}
	return cfg, nil
}
