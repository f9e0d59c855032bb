package logsource

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync"

	"github.com/tinytelemetry/logrelay/internal/model"
)

// lineReader splits a byte stream into lines without the trailing "\n" or
// "\r\n". A line longer than max bytes is discarded through its newline and
// reading continues with the next line.
type lineReader struct {
	r       *bufio.Reader
	max     int
	name    string
	dropped int
}

func newLineReader(r io.Reader, name string, max int) *lineReader {
	return &lineReader{
		r:    bufio.NewReaderSize(r, min(64*1024, max+2)),
		max:  max,
		name: name,
	}
}

// next returns the next non-empty line. A final line without a newline is
// returned before io.EOF.
func (lr *lineReader) next() (string, error) {
	for {
		line, tooLong, err := lr.readLine()
		if tooLong {
			lr.dropped++
			log.Printf("logsource: %s: dropped line longer than %d bytes", lr.name, lr.max)
		} else if line != "" {
			return line, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func (lr *lineReader) readLine() (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, rerr := lr.r.ReadSlice('\n')
		if !tooLong {
			buf = append(buf, chunk...)
			// Room for the line plus "\r\n" before the terminator is seen.
			if len(buf) > lr.max+2 {
				tooLong, buf = true, nil
			}
		}
		if errors.Is(rerr, bufio.ErrBufferFull) {
			continue
		}
		err = rerr
		break
	}
	if tooLong {
		return "", true, err
	}

	n := len(buf)
	if n > 0 && buf[n-1] == '\n' {
		n--
		if n > 0 && buf[n-1] == '\r' {
			n--
		}
	}
	if n > lr.max {
		return "", true, err
	}
	return string(buf[:n]), false, err
}

// stream delivers the lines of one reader on a channel that is closed when
// the reader ends or the stream is stopped.
type stream struct {
	name   string
	ch     chan model.IngestEnvelope
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	err     error
	dropped int
}

// startStream reads r in the background. Stopping the stream closes the
// channel at once even when r is blocked; the blocked read is abandoned.
// The stream's context is cancelled once the channel is closed for any reason.
func startStream(ctx context.Context, name string, r io.Reader, bufferSize, maxLineSize int) *stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &stream{
		name:   name,
		ch:     make(chan model.IngestEnvelope, bufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	lines := make(chan string)
	go s.scan(ctx, newLineReader(r, name, maxLineSize), lines)
	go s.forward(ctx, lines)
	return s
}

func (s *stream) scan(ctx context.Context, lr *lineReader, lines chan<- string) {
	defer close(lines)
	for {
		line, err := lr.next()
		if err != nil {
			s.mu.Lock()
			s.dropped = lr.dropped
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && ctx.Err() == nil {
				log.Printf("logsource: %s: read error: %v", s.name, err)
				s.err = err
			}
			s.mu.Unlock()
			return
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

func (s *stream) forward(ctx context.Context, lines <-chan string) {
	defer s.cancel()
	defer close(s.ch)
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			select {
			case s.ch <- model.IngestEnvelope{Source: s.name, Line: line}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Err returns the read error that ended the source, or nil after a clean EOF or Stop.
func (s *stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Dropped returns how many oversized lines were discarded. It is final once
// Lines() is closed by end of input.
func (s *stream) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// closed is done once the stream has ended.
func (s *stream) closed() <-chan struct{} { return s.ctx.Done() }

func (s *stream) Lines() <-chan model.IngestEnvelope { return s.ch }
func (s *stream) Stop()                              { s.cancel() }
func (s *stream) Name() string                       { return s.name }
