package ingest

import (
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/tinytelemetry/logrelay/internal/logparse"
	"github.com/tinytelemetry/logrelay/internal/model"
)

// ProcessorConfig holds optional processor behavior.
type ProcessorConfig struct {
	// Echo receives a copy of every counted line.
	Echo io.Writer
	// EchoUnparsed also echoes lines that were not counted.
	EchoUnparsed bool
}

// Processor parses wire lines and feeds matching entries to a sink in arrival order.
type Processor struct {
	sink         model.EntrySink
	echoMu       sync.Mutex
	echo         io.Writer
	echoUnparsed bool

	matched      atomic.Int64
	unparsed     atomic.Int64
	unknownLevel atomic.Int64
}

// NewProcessor creates a new wire-format processor.
func NewProcessor(sink model.EntrySink, conf ...ProcessorConfig) *Processor {
	p := &Processor{sink: sink}
	if len(conf) > 0 {
		p.echo = conf[0].Echo
		p.echoUnparsed = conf[0].EchoUnparsed
	}
	return p
}

// ProcessResult holds the result of processing a log line.
type ProcessResult struct {
	Entry model.Entry
}

// Counters reports how many lines the processor has seen, by outcome.
type Counters struct {
	Matched      int64
	Unparsed     int64
	UnknownLevel int64
}

func (p *Processor) Name() string { return ProcessorNameWire }

// ProcessEnvelope processes the line carried by env.
func (p *Processor) ProcessEnvelope(env model.IngestEnvelope) *ProcessResult {
	return p.ProcessLine(env.Line)
}

// ProcessLine parses one line. It returns nil when the line is not counted:
// lines without the wire shape are skipped silently, and lines with an
// unrecognized level token are skipped with a warning naming the token.
func (p *Processor) ProcessLine(line string) *ProcessResult {
	entry, err := logparse.ParseLine(line)
	if err != nil {
		var ule *logparse.UnknownLevelError
		if errors.As(err, &ule) {
			p.unknownLevel.Add(1)
			log.Printf("ingest: unrecognized level %q, line not counted", ule.Token)
		} else {
			p.unparsed.Add(1)
		}
		if p.echoUnparsed {
			p.echoLine(line)
		}
		return nil
	}

	p.matched.Add(1)
	p.echoLine(line)
	if p.sink != nil {
		p.sink.Observe(entry)
	}
	return &ProcessResult{Entry: entry}
}

func (p *Processor) echoLine(line string) {
	if p.echo == nil {
		return
	}
	p.echoMu.Lock()
	defer p.echoMu.Unlock()
	_, _ = io.WriteString(p.echo, line+"\n")
}

// Counters returns a copy of the processor's line counters.
func (p *Processor) Counters() Counters {
	return Counters{
		Matched:      p.matched.Load(),
		Unparsed:     p.unparsed.Load(),
		UnknownLevel: p.unknownLevel.Load(),
	}
}
