package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/logrelay/internal/cliutil"
	"github.com/tinytelemetry/logrelay/internal/httpserver"
	"github.com/tinytelemetry/logrelay/internal/relay"
)

// runRelay serves the relay until a shutdown signal arrives.
func runRelay(cfg appConfig) error {
	cleanupLogger := cliutil.ConfigureRuntimeLogger(cfg.LogFile)
	defer cleanupLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopSignals := cliutil.HandleSignals(cancel)
	defer stopSignals()

	return serveRelay(ctx, cfg, os.Stdout)
}

// serveRelay runs the relay and the optional API until ctx is cancelled.
func serveRelay(ctx context.Context, cfg appConfig, stdout io.Writer) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var echo io.Writer
	if cfg.Echo {
		echo = stdout
	}
	server := relay.NewServer(cfg.ListenAddr(), relay.ServerConfig{
		WriteTimeout: cfg.WriteTimeout,
		Echo:         echo,
		Registry:     reg,
	})
	if err := server.Start(); err != nil {
		return err
	}

	fmt.Fprintln(stdout, startupBanner(cfg, server.Addr()).Render())

	// An API failure cancels gctx, which stops the relay.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		if err := server.Stop(); err != nil {
			return fmt.Errorf("relay: stop: %w", err)
		}
		return nil
	})
	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, httpserver.Config{
			Peers:    server,
			Gatherer: reg,
		})
		g.Go(func() error {
			if err := apiServer.Run(gctx); err != nil {
				return fmt.Errorf("API server: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func startupBanner(cfg appConfig, listenAddr string) cliutil.Banner {
	configPath := "default (no file)"
	if cfg.ConfigPath != "" {
		configPath = cliutil.ShortenPath(cfg.ConfigPath)
	}
	logFile := cfg.LogFile
	if logFile != "" {
		logFile = cliutil.ShortenPath(logFile)
	}
	return cliutil.Banner{
		Name:    "logrelay",
		Version: version,
		Sections: []cliutil.BannerSection{
			{Title: "Gateway", Rows: []cliutil.BannerRow{
				{Label: "TCP Relay", Value: listenAddr},
				cliutil.EnabledRow("HTTP API", cfg.APIEnabled, cfg.APIAddr),
			}},
			{Title: "Runtime", Rows: []cliutil.BannerRow{
				cliutil.EnabledRow("Echo", cfg.Echo, "stdout"),
				cliutil.EnabledRow("Write Timeout", cfg.WriteTimeout > 0, cfg.WriteTimeout.String()),
				cliutil.EnabledRow("Log File", cfg.LogFile != "", logFile),
				{Label: "Config File", Value: configPath, Disabled: cfg.ConfigPath == ""},
			}},
		},
	}
}
