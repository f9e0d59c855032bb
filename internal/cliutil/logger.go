// Package cliutil holds the process plumbing shared by the command binaries:
// runtime logging, config loading, signal handling and startup banners.
package cliutil

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	runtimeLogMaxSizeMB  = 10
	runtimeLogMaxBackups = 3
)

// ConfigureRuntimeLogger sends the standard logger to stderr and, when path is
// set, to a size-rotated file as well. The returned func closes the file.
func ConfigureRuntimeLogger(path string) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if path == "" {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.SetOutput(os.Stderr)
		log.Printf("cliutil: log file %s unavailable, logging to stderr only: %v", path, err)
		return func() {}
	}

	fileLogger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    runtimeLogMaxSizeMB,
		MaxBackups: runtimeLogMaxBackups,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, fileLogger))
	return func() {
		log.SetOutput(os.Stderr)
		_ = fileLogger.Close()
	}
}
