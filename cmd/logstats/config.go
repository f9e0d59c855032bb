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
	defaultAPIAddr = "127.0.0.1:9997"
	synopsis       = "logstats [--host ADDR] [--port PORT] [-N COUNT] [-T SECONDS] [flags]"
)

// appConfig is the collector's runtime configuration.
type appConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Every      int    `mapstructure:"every"`
	Interval   int    `mapstructure:"interval"` // seconds
	Stdin      bool   `mapstructure:"stdin"`
	Echo       bool   `mapstructure:"echo"`
	APIEnabled bool   `mapstructure:"api-enabled"`
	APIAddr    string `mapstructure:"api-addr"`
	LogFile    string `mapstructure:"log-file"`
	Version    bool   `mapstructure:"version"`
	ConfigPath string `mapstructure:"-"`
}

// RelayAddr is the upstream relay address.
func (c appConfig) RelayAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReportInterval is the timer trigger period.
func (c appConfig) ReportInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

func newFlagSet() *pflag.FlagSet {
	fs := cliutil.NewFlagSet("logstats")
	fs.String("host", model.DefaultRelayHost, "relay host to connect to")
	fs.Int("port", model.DefaultRelayPort, "relay port (1-65535)")
	fs.IntP("every", "N", model.DefaultReportEvery, "report after this many counted messages")
	fs.IntP("interval", "T", int(model.DefaultReportInterval/time.Second),
		fmt.Sprintf("report every T seconds when new data arrived (%d-%d)",
			int(model.MinReportInterval/time.Second), int(model.MaxReportInterval/time.Second)))
	fs.Bool("stdin", false, "read log lines from stdin instead of the relay")
	fs.Bool("echo", false, "print every counted line to stdout")
	fs.Bool("api-enabled", false, "serve the HTTP status API")
	fs.String("api-addr", defaultAPIAddr, "HTTP status API listen address")
	fs.String("log-file", "", "also write runtime logs to this rotating file")
	fs.Bool("version", false, "print version information")
	return fs
}

// loadConfig parses and validates everything before any socket is opened.
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
	if cfg.Every < 1 {
		return cfg, fmt.Errorf("invalid N: %d (want >= 1)", cfg.Every)
	}
	minT, maxT := int(model.MinReportInterval/time.Second), int(model.MaxReportInterval/time.Second)
	if cfg.Interval < minT || cfg.Interval > maxT {
		return cfg, fmt.Errorf("invalid T: %d (want %d-%d seconds)", cfg.Interval, minT, maxT)
	}
	return cfg, nil
}
