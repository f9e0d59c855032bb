package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/tinytelemetry/logrelay/internal/model"
)

const defaultQueueSize = 64

// Emitter is the subset of emitter behavior the loop drives.
type Emitter interface {
	Log(msg string, lvl model.Level) error
	SetLevel(model.Level)
	SetDefaultLevel(model.Level)
	DefaultLevel() model.Level
}

// LoopConfig holds optional loop settings.
type LoopConfig struct {
	// Out receives prompts and command feedback. Nil discards them.
	Out       io.Writer
	QueueSize int
	Prompt    string
}

// Loop reads input on one goroutine and applies it on another, in arrival order.
type Loop struct {
	emitter   Emitter
	out       io.Writer
	prompt    string
	queueSize int
	outMu     sync.Mutex
}

// NewLoop creates a console loop over emitter.
func NewLoop(emitter Emitter, conf ...LoopConfig) *Loop {
	l := &Loop{
		emitter:   emitter,
		out:       io.Discard,
		queueSize: defaultQueueSize,
	}
	if len(conf) > 0 {
		if conf[0].Out != nil {
			l.out = conf[0].Out
		}
		if conf[0].QueueSize > 0 {
			l.queueSize = conf[0].QueueSize
		}
		l.prompt = conf[0].Prompt
	}
	return l
}

// Run blocks until the exit command, end of input, or ctx cancellation.
func (l *Loop) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan Input, l.queueSize)

	// The reader is not joined: it may stay blocked on in until the next
	// line arrives, and exits then because ctx is done.
	go func() {
		defer close(queue)
		l.readInput(ctx, in, queue)
	}()

	return l.process(ctx, cancel, queue)
}

func (l *Loop) readInput(ctx context.Context, in io.Reader, queue chan<- Input) {
	scanner := bufio.NewScanner(in)
	for {
		if l.prompt != "" {
			l.printf("%s", l.prompt)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				log.Printf("console: read input: %v", err)
			}
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		select {
		case queue <- ParseInput(line):
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) process(ctx context.Context, stop context.CancelFunc, queue <-chan Input) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case in, ok := <-queue:
			if !ok {
				return nil
			}
			if l.apply(in) {
				stop()
				return nil
			}
		}
	}
}

// apply handles one input and reports whether the loop should stop.
func (l *Loop) apply(in Input) bool {
	if in.UnknownLevel != "" {
		l.printf("level %s is not defined\n", in.UnknownLevel)
	}
	lvl := in.Level
	if !in.HasLevel {
		lvl = l.emitter.DefaultLevel()
	}

	switch in.Text {
	case CmdExit:
		return true
	case CmdChLevel:
		l.emitter.SetLevel(lvl)
		l.printf("Minimum level changed to %s\n", lvl)
	case CmdChDefault:
		l.emitter.SetDefaultLevel(lvl)
		l.printf("Default level changed to %s\n", lvl)
	default:
		if err := l.emitter.Log(in.Text, lvl); err != nil {
			log.Printf("console: emit: %v", err)
		}
	}
	return false
}

func (l *Loop) printf(format string, args ...any) {
	l.outMu.Lock()
	defer l.outMu.Unlock()
	fmt.Fprintf(l.out, format, args...)
}
