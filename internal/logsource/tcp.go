package logsource

import (
	"context"
	"fmt"
	"net"
	"time"
)

// DefaultDialTimeout bounds the initial connection to the relay.
const DefaultDialTimeout = 10 * time.Second

// TCPConfig holds tunable parameters for the relay connection.
type TCPConfig struct {
	BufferSize  int
	MaxLineSize int
	DialTimeout time.Duration
}

// TCPSource reads log lines from one outbound connection to the relay.
// Oversized lines are dropped; only EOF, a read error or Stop end the source.
type TCPSource struct {
	*stream
	conn net.Conn
}

// DialTCP connects to addr and starts reading lines in the background.
// A connection failure is returned to the caller.
func DialTCP(ctx context.Context, addr string, conf ...TCPConfig) (*TCPSource, error) {
	bufferSize := DefaultBuffer
	maxLineSize := DefaultMaxLineSize
	dialTimeout := DefaultDialTimeout
	if len(conf) > 0 {
		if conf[0].BufferSize > 0 {
			bufferSize = conf[0].BufferSize
		}
		if conf[0].MaxLineSize > 0 {
			maxLineSize = conf[0].MaxLineSize
		}
		if conf[0].DialTimeout > 0 {
			dialTimeout = conf[0].DialTimeout
		}
	}

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("logsource: connect %s: %w", addr, err)
	}

	s := &TCPSource{
		stream: startStream(ctx, "tcp", conn, bufferSize, maxLineSize),
		conn:   conn,
	}
	// Closing the connection is what unblocks a pending read.
	go func() {
		<-s.closed()
		_ = conn.Close()
	}()
	return s, nil
}

// RemoteAddr returns the relay address this source is connected to.
func (s *TCPSource) RemoteAddr() string { return s.conn.RemoteAddr().String() }
