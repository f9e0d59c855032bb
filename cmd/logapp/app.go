package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tinytelemetry/logrelay/internal/cliutil"
	"github.com/tinytelemetry/logrelay/internal/console"
	"github.com/tinytelemetry/logrelay/internal/emitter"
)

// runApp opens the emitter and drives it from stdin until exit.
func runApp(cfg appConfig) error {
	cleanupLogger := cliutil.ConfigureRuntimeLogger(cfg.LogFile)
	defer cleanupLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopSignals := cliutil.HandleSignals(cancel)
	defer stopSignals()

	return produce(ctx, cfg, os.Stdin, os.Stdout)
}

func produce(ctx context.Context, cfg appConfig, in io.Reader, out io.Writer) error {
	em, err := emitter.New(emitter.Config{
		Mode:         cfg.mode,
		FilePath:     cfg.File,
		Addr:         cfg.RelayAddr(),
		Level:        cfg.level,
		DefaultLevel: cfg.defaultLevel,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := em.Close(); err != nil {
			log.Printf("logapp: close: %v", err)
		}
	}()

	fmt.Fprintf(out, "Logging to %s (minimum %s, default %s). Prefix a line with \"level!\" to set its level; type exit to quit.\n",
		destination(cfg), cfg.level, cfg.defaultLevel)

	loop := console.NewLoop(em, console.LoopConfig{Out: out})
	return loop.Run(ctx, in)
}

func destination(cfg appConfig) string {
	switch cfg.mode {
	case emitter.ModeFile:
		return cfg.File
	case emitter.ModeSocket:
		return cfg.RelayAddr()
	}
	return cfg.File + " and " + cfg.RelayAddr()
}
