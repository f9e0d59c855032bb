// Package relay implements a TCP broadcast relay: every byte sequence received
// from one peer is forwarded verbatim to every other connected peer.
package relay

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"
)

const (
	// DefaultAddr is the listen address used when none is given.
	DefaultAddr = "0.0.0.0:9999"

	// DefaultReadBufferSize is the per-session read buffer. Lines longer than this
	// are forwarded in buffer-sized chunks.
	DefaultReadBufferSize = 64 * 1024

	maxAcceptDelay = time.Second
)

// ServerConfig holds tunable parameters for the relay server.
type ServerConfig struct {
	ReadBufferSize int
	// WriteTimeout bounds a single broadcast write to one peer. Zero means no
	// timeout: a stalled peer blocks the broadcast for everyone.
	WriteTimeout time.Duration
	// Echo, when set, receives a copy of every forwarded chunk.
	Echo io.Writer
	// Registry receives the relay metrics. A private registry is created when nil.
	Registry *prometheus.Registry
}

// Server accepts peers and fans out their data to each other.
//
// Each peer gets its own session goroutine. The peer set is guarded by one
// mutex that is held for a set mutation or for one whole broadcast iteration.
type Server struct {
	listener     net.Listener
	addr         string
	readBufSize  int
	writeTimeout time.Duration
	registry     *prometheus.Registry
	metrics      *Metrics
	acceptLog    *rate.Limiter

	echoMu sync.Mutex
	echo   io.Writer

	mu     sync.Mutex
	peers  map[*peer]struct{}
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a relay server. Default addr is DefaultAddr.
func NewServer(addr string, conf ...ServerConfig) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	readBufSize := DefaultReadBufferSize
	var (
		writeTimeout time.Duration
		echo         io.Writer
		registry     *prometheus.Registry
	)
	if len(conf) > 0 {
		if conf[0].ReadBufferSize > 0 {
			readBufSize = conf[0].ReadBufferSize
		}
		writeTimeout = conf[0].WriteTimeout
		echo = conf[0].Echo
		registry = conf[0].Registry
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:         addr,
		readBufSize:  readBufSize,
		writeTimeout: writeTimeout,
		echo:         echo,
		registry:     registry,
		metrics:      newMetrics(registry),
		acceptLog:    rate.NewLimiter(rate.Every(time.Second), 5),
		peers:        make(map[*peer]struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start binds the listen address and begins accepting peers.
// A bind or listen failure is returned; accept failures are logged and retried.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("relay: listen %s: %w", s.addr, err)
	}
	s.listener = listener

	s.wg.Add(1)
	go s.acceptLoop(listener)

	return nil
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()

	var delay time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.metrics.acceptErrors.Inc()
			if s.acceptLog.Allow() {
				log.Printf("relay: accept error: %v", err)
			}
			// Back off so a persistent failure (fd exhaustion) does not spin.
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(2*delay, maxAcceptDelay)
			}
			select {
			case <-time.After(delay):
			case <-s.ctx.Done():
				return
			}
			continue
		}
		delay = 0

		p := newPeer(conn)
		if !s.register(p) {
			_ = conn.Close()
			return
		}
		s.wg.Add(1)
		go s.serve(p)
	}
}

// register adds p to the peer set before its session starts reading.
// It returns false once the server is stopping.
func (s *Server) register(p *peer) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.peers[p] = struct{}{}
	count := len(s.peers)
	s.mu.Unlock()

	s.metrics.peersAccepted.Inc()
	s.metrics.peersConnected.Set(float64(count))
	log.Printf("relay: peer %s connected (%d peers)", p, count)
	return true
}

// serve is the session loop for one peer. It reads line-aligned chunks and
// broadcasts each one as it arrives; a read error or EOF ends only this session.
func (s *Server) serve(p *peer) {
	defer s.wg.Done()

	r := bufio.NewReaderSize(p.conn, s.readBufSize)
	for {
		chunk, err := r.ReadSlice('\n')
		if len(chunk) > 0 {
			s.metrics.bytesReceived.Add(float64(len(chunk)))
			s.echoChunk(chunk)
			s.broadcast(p, chunk)
		}
		if err != nil {
			if errors.Is(err, bufio.ErrBufferFull) {
				continue
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Printf("relay: read from %s: %v", p, err)
			}
			break
		}
	}

	s.disconnect(p)
}

func (s *Server) echoChunk(chunk []byte) {
	if s.echo == nil {
		return
	}
	s.echoMu.Lock()
	defer s.echoMu.Unlock()
	_, _ = fmt.Fprintf(s.echo, "Log: %s", chunk)
}

// broadcast writes data to every registered peer except sender. A peer whose
// write fails is removed from the set before the lock is released, so no
// concurrent broadcast writes to it again; it is closed after the iteration.
// The remaining peers still get data.
func (s *Server) broadcast(sender *peer, data []byte) {
	var failed []*peer

	s.mu.Lock()
	for p := range s.peers {
		if p == sender {
			continue
		}
		if s.writeTimeout > 0 {
			_ = p.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		}
		n, err := p.conn.Write(data)
		s.metrics.bytesForwarded.Add(float64(n))
		if err != nil {
			s.metrics.sendErrors.Inc()
			log.Printf("relay: send to %s: %v", p, err)
			failed = append(failed, p)
		}
	}
	for _, p := range failed {
		delete(s.peers, p)
	}
	count := len(s.peers)
	s.mu.Unlock()

	for _, p := range failed {
		s.dropped(p, count)
	}
}

// disconnect removes p from the peer set and closes it. It is idempotent and
// may race with broadcasts and with the peer's own session.
func (s *Server) disconnect(p *peer) {
	s.mu.Lock()
	_, ok := s.peers[p]
	if ok {
		delete(s.peers, p)
	}
	count := len(s.peers)
	s.mu.Unlock()

	if ok {
		s.dropped(p, count)
		return
	}
	_ = p.close()
}

// dropped closes a peer already removed from the set and records it.
func (s *Server) dropped(p *peer, count int) {
	_ = p.close()
	s.metrics.peersConnected.Set(float64(count))
	log.Printf("relay: peer %s disconnected (%d peers)", p, count)
}

// Stop closes the listener and every peer, then waits for all sessions to end.
func (s *Server) Stop() error {
	s.cancel()

	var err error
	if s.listener != nil {
		if cerr := s.listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}

	s.mu.Lock()
	s.closed = true
	peers := make([]*peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	clear(s.peers)
	s.mu.Unlock()
	s.metrics.peersConnected.Set(0)

	for _, p := range peers {
		if cerr := p.close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, fmt.Errorf("close peer %s: %w", p, cerr))
		}
	}

	s.wg.Wait()
	return err
}

// PeerCount returns the number of registered peers.
func (s *Server) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// Addr returns the active listen address.
// Before Start, it returns the configured address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Registry returns the registry holding the relay metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}
