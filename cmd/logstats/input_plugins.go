package main

import (
	"context"
	"fmt"

	"github.com/tinytelemetry/logrelay/internal/logsource"
)

// InputSourcePlugin builds the collector's single upstream source.
type InputSourcePlugin interface {
	Name() string
	Enabled() bool
	Build(ctx context.Context) (logsource.LogSource, error)
}

// InputPluginConfig defines runtime input selection.
type InputPluginConfig struct {
	RelayAddr string
	Stdin     bool
}

// selectInputPlugin returns the first enabled plugin: stdin when requested,
// the relay otherwise.
func selectInputPlugin(cfg InputPluginConfig) InputSourcePlugin {
	plugins := []InputSourcePlugin{
		stdinInputPlugin{requested: cfg.Stdin},
		tcpInputPlugin{addr: cfg.RelayAddr},
	}
	for _, p := range plugins {
		if p.Enabled() {
			return p
		}
	}
	return plugins[len(plugins)-1]
}

type tcpInputPlugin struct {
	addr string
}

func (p tcpInputPlugin) Name() string  { return "tcp" }
func (p tcpInputPlugin) Enabled() bool { return p.addr != "" }

func (p tcpInputPlugin) Build(ctx context.Context) (logsource.LogSource, error) {
	src, err := logsource.DialTCP(ctx, p.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay %s (is it running?): %w", p.addr, err)
	}
	return src, nil
}

type stdinInputPlugin struct {
	requested bool
}

func (p stdinInputPlugin) Name() string { return "stdin" }

func (p stdinInputPlugin) Enabled() bool { return p.requested }

func (p stdinInputPlugin) Build(ctx context.Context) (logsource.LogSource, error) {
	return logsource.NewStdinSource(ctx), nil
}
