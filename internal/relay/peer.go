package relay

import (
	"net"
	"sync"

	"github.com/google/uuid"
)

// peer is one live connection. Its session goroutine owns reads; the server's
// peer set references it for broadcast writes.
type peer struct {
	id   string
	conn net.Conn

	closeOnce sync.Once
	closeErr  error
}

func newPeer(conn net.Conn) *peer {
	return &peer{
		id:   uuid.New().String(),
		conn: conn,
	}
}

// close closes the connection exactly once and returns the first close error.
func (p *peer) close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.conn.Close()
	})
	return p.closeErr
}

func (p *peer) String() string {
	return p.id[:8] + "@" + p.conn.RemoteAddr().String()
}
