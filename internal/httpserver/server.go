package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tinytelemetry/logrelay/internal/model"
	"github.com/tinytelemetry/logrelay/internal/stats"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = "127.0.0.1:9998"

// Config selects which endpoints the server exposes. Nil fields disable
// the matching route.
type Config struct {
	Peers    model.PeerCounter
	Stats    stats.SnapshotSource
	Gatherer prometheus.Gatherer
}

// Server provides a read-only HTTP status API for the relay and the collector.
type Server struct {
	addr      string
	conf      Config
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, conf Config) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		conf:      conf,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Start begins serving HTTP requests in the background.
func (s *Server) Start() error {
	if err := s.listen(); err != nil {
		return err
	}
	go s.server.Serve(s.listener)
	return nil
}

// Run serves until ctx is cancelled or serving fails. A listen failure is
// returned at once.
func (s *Server) Run(ctx context.Context) error {
	if err := s.listen(); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() { errCh <- s.server.Serve(s.listener) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpserver: serve: %w", err)
	case <-ctx.Done():
		return s.Stop()
	}
}

func (s *Server) listen() error {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s.server = &http.Server{
		Handler:           s.router(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("httpserver: listen %s: %w", s.addr, err)
	}
	s.listener = listener
	s.startTime = time.Now()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the bound listen address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	if s.conf.Peers != nil {
		r.GET("/api/peers", s.handlePeers)
	}
	if s.conf.Stats != nil {
		r.GET("/api/stats", s.handleStats)
	}
	if s.conf.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.conf.Gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":     "ok",
		"uptime":     time.Since(s.startTime).String(),
		"goroutines": runtime.NumGoroutine(),
	}
	if rss, err := processRSS(); err == nil {
		body["rss_bytes"] = rss
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handlePeers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"peers": s.conf.Peers.PeerCount()})
}

func (s *Server) handleStats(c *gin.Context) {
	snap := s.conf.Stats.Snapshot()
	body := gin.H{"snapshot": snap}
	if avg, ok := snap.Average(); ok {
		body["average_length"] = avg
	}
	c.JSON(http.StatusOK, body)
}
