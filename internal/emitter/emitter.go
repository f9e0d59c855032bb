// Package emitter writes wire-format log lines to a local file, a relay
// connection, or both.
package emitter

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tinytelemetry/logrelay/internal/logparse"
	"github.com/tinytelemetry/logrelay/internal/model"
)

const (
	DefaultFilePath    = "log.txt"
	DefaultDialTimeout = 10 * time.Second
	DefaultMaxSizeMB   = 10
	DefaultMaxBackups  = 3
)

var (
	ErrInvalidAddress = errors.New("emitter: invalid relay address")
	ErrClosed         = errors.New("emitter: closed")
)

// Config holds emitter settings. Zero values take the package defaults.
type Config struct {
	Mode         Mode
	FilePath     string
	Addr         string // relay address as "ip:port"
	Level        model.Level
	DefaultLevel model.Level
	DialTimeout  time.Duration
	MaxSizeMB    int
	MaxBackups   int
	Clock        clock.Clock
}

// Emitter formats messages and writes them to its sinks. It is safe for
// concurrent use.
type Emitter struct {
	mu           sync.Mutex
	clock        clock.Clock
	file         io.WriteCloser
	conn         net.Conn
	level        model.Level
	defaultLevel model.Level
	closed       bool
}

// New opens the sinks selected by conf.Mode. A socket sink requires a
// reachable relay at conf.Addr.
func New(conf Config) (*Emitter, error) {
	if conf.Mode == 0 {
		conf.Mode = ModeBoth
	}
	if !conf.Mode.writesFile() && !conf.Mode.writesSocket() {
		return nil, fmt.Errorf("emitter: unsupported mode %v", conf.Mode)
	}
	if !conf.Level.Valid() {
		return nil, fmt.Errorf("emitter: invalid minimum level %d", int(conf.Level))
	}
	if !conf.DefaultLevel.Valid() {
		return nil, fmt.Errorf("emitter: invalid default level %d", int(conf.DefaultLevel))
	}

	e := &Emitter{
		clock:        conf.Clock,
		level:        conf.Level,
		defaultLevel: conf.DefaultLevel,
	}
	if e.clock == nil {
		e.clock = clock.New()
	}

	if conf.Mode.writesSocket() {
		conn, err := dialRelay(conf.Addr, conf.DialTimeout)
		if err != nil {
			return nil, err
		}
		e.conn = conn
	}

	if conf.Mode.writesFile() {
		path := conf.FilePath
		if path == "" {
			path = DefaultFilePath
		}
		maxSize := conf.MaxSizeMB
		if maxSize <= 0 {
			maxSize = DefaultMaxSizeMB
		}
		backups := conf.MaxBackups
		if backups <= 0 {
			backups = DefaultMaxBackups
		}
		e.file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSize,
			MaxBackups: backups,
		}
	}

	return e, nil
}

func dialRelay(addr string, timeout time.Duration) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAddress, addr, err)
	}
	if net.ParseIP(host) == nil {
		return nil, fmt.Errorf("%w %q: host must be an IP address", ErrInvalidAddress, addr)
	}
	if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("%w %q: bad port", ErrInvalidAddress, addr)
	}
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("emitter: connect to relay %s: %w", addr, err)
	}
	return conn, nil
}

// Log writes msg at lvl to every sink. Messages below the minimum level are
// dropped without error.
func (e *Emitter) Log(msg string, lvl model.Level) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if lvl < e.level {
		return nil
	}

	line := []byte(logparse.FormatLine(e.clock.Now(), lvl, msg))

	var err error
	if e.file != nil {
		if _, werr := e.file.Write(line); werr != nil {
			err = multierr.Append(err, fmt.Errorf("write file: %w", werr))
		}
	}
	if e.conn != nil {
		if _, werr := e.conn.Write(line); werr != nil {
			err = multierr.Append(err, fmt.Errorf("write relay: %w", werr))
		}
	}
	return err
}

// SetLevel sets the minimum level written.
func (e *Emitter) SetLevel(lvl model.Level) {
	e.mu.Lock()
	e.level = lvl
	e.mu.Unlock()
}

// Level returns the minimum level written.
func (e *Emitter) Level() model.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// SetDefaultLevel sets the level used for messages that carry none.
func (e *Emitter) SetDefaultLevel(lvl model.Level) {
	e.mu.Lock()
	e.defaultLevel = lvl
	e.mu.Unlock()
}

func (e *Emitter) DefaultLevel() model.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defaultLevel
}

// Close releases both sinks. Further Log calls return ErrClosed.
func (e *Emitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var err error
	if e.file != nil {
		err = multierr.Append(err, e.file.Close())
	}
	if e.conn != nil {
		err = multierr.Append(err, e.conn.Close())
	}
	return err
}
