package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/logrelay/internal/cliutil"
	"github.com/tinytelemetry/logrelay/internal/httpserver"
	"github.com/tinytelemetry/logrelay/internal/ingest"
	"github.com/tinytelemetry/logrelay/internal/logsource"
	"github.com/tinytelemetry/logrelay/internal/stats"
)

var errSourceClosed = errors.New("upstream closed")

// runCollector connects to the configured source and reports until the
// source ends or a shutdown signal arrives.
func runCollector(cfg appConfig) error {
	cleanupLogger := cliutil.ConfigureRuntimeLogger(cfg.LogFile)
	defer cleanupLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopSignals := cliutil.HandleSignals(cancel)
	defer stopSignals()

	plugin := selectInputPlugin(InputPluginConfig{
		RelayAddr: cfg.RelayAddr(),
		Stdin:     cfg.Stdin,
	})
	if plugin.Name() == "tcp" {
		fmt.Printf("Connecting to %s...\n", cfg.RelayAddr())
	}
	src, err := plugin.Build(ctx)
	if err != nil {
		return err
	}
	defer src.Stop()

	return collect(ctx, cfg, src, os.Stdout)
}

// reportPrinter writes framed reports. Count and timer reports may come from
// different goroutines, so writes are serialized.
type reportPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *reportPrinter) Print(s stats.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\n%s\n%s%s\n\n", cliutil.HeadingStyle(stats.ReportHeader), stats.FormatReport(s), stats.ReportFooter)
}

// collect feeds src through the parser into the aggregator and runs both
// report triggers until src closes or ctx is cancelled.
func collect(ctx context.Context, cfg appConfig, src logsource.LogSource, stdout io.Writer) error {
	printer := &reportPrinter{out: stdout}
	agg := stats.NewAggregator()
	reporter := stats.NewReporter(agg, stats.ReporterConfig{
		Every:    cfg.Every,
		Interval: cfg.ReportInterval(),
		Report:   printer.Print,
	})

	var echo io.Writer
	if cfg.Echo {
		echo = stdout
	}
	processor := ingest.NewEnvelopeProcessor(reporter, ingest.ProcessorConfig{Echo: echo})

	if cfg.APIEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			stats.NewMetricsCollector(reporter),
			collectors.NewGoCollector(),
		)
		apiServer := httpserver.NewServer(cfg.APIAddr, httpserver.Config{
			Stats:    reporter,
			Gatherer: reg,
		})
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	fmt.Fprintln(stdout, startupBanner(cfg, src.Name(), processor.Name()).Render())

	reporter.Start()
	defer reporter.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lines := src.Lines()
		for {
			select {
			case <-gctx.Done():
				return nil
			case env, ok := <-lines:
				if !ok {
					return errSourceClosed
				}
				processor.ProcessEnvelope(env)
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, errSourceClosed) {
		if tcp, ok := src.(*logsource.TCPSource); ok {
			if rerr := tcp.Err(); rerr != nil {
				log.Printf("logstats: relay read error: %v", rerr)
			}
			fmt.Fprintln(stdout, "Connection lost")
		}
		err = nil
	}
	fmt.Fprintln(stdout, "Stats collection is done.")
	return err
}

func startupBanner(cfg appConfig, sourceName, processorName string) cliutil.Banner {
	upstream := cfg.RelayAddr()
	if sourceName == "stdin" {
		upstream = "stdin"
	}
	configPath := "default (no file)"
	if cfg.ConfigPath != "" {
		configPath = cliutil.ShortenPath(cfg.ConfigPath)
	}
	return cliutil.Banner{
		Name:    "logstats",
		Version: version,
		Sections: []cliutil.BannerSection{
			{Title: "Input", Rows: []cliutil.BannerRow{
				{Label: "Source", Value: upstream},
				{Label: "Processor", Value: processorName},
				cliutil.EnabledRow("HTTP API", cfg.APIEnabled, cfg.APIAddr),
			}},
			{Title: "Reporting", Rows: []cliutil.BannerRow{
				{Label: "Every N", Value: fmt.Sprintf("%d messages", cfg.Every)},
				{Label: "Every T", Value: cfg.ReportInterval().String()},
				cliutil.EnabledRow("Echo", cfg.Echo, "stdout"),
				{Label: "Config File", Value: configPath, Disabled: cfg.ConfigPath == ""},
			}},
		},
	}
}
