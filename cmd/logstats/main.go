package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/tinytelemetry/logrelay/internal/cliutil"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	fs := newFlagSet()
	cfg, err := loadConfig(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Println(cliutil.Usage(fs, synopsis))
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, cliutil.Usage(fs, synopsis))
		os.Exit(1)
	}

	if cfg.Version {
		fmt.Printf("logstats - log statistics collector\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		return
	}

	if err := runCollector(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
