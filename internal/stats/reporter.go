package stats

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/tinytelemetry/logrelay/internal/model"
)

// ReportFunc receives each emitted snapshot. It is called while the
// aggregator lock is held, so it must not call back into the aggregator.
type ReportFunc func(Snapshot)

// ReporterConfig holds the two report triggers.
type ReporterConfig struct {
	Every    int           // emit after this many new entries (N), default model.DefaultReportEvery
	Interval time.Duration // emit at most this often when dirty (T), default model.DefaultReportInterval
	Report   ReportFunc
	Clock    clock.Clock // ticker source, default real clock
}

// Reporter emits aggregator snapshots on a count trigger and a timer trigger.
//
// Trigger checks, emission and the counter reset all run under the aggregator
// lock, so a report never sees a half-applied entry and the two triggers cannot
// lose or double-count increments between them.
type Reporter struct {
	agg      *Aggregator
	every    int
	interval time.Duration
	report   ReportFunc
	clock    clock.Clock

	done     chan struct{}
	wg       sync.WaitGroup
	startMu  sync.Mutex
	started  bool
	stopOnce sync.Once
}

// NewReporter creates a reporter over agg. The timer trigger does not run until Start.
func NewReporter(agg *Aggregator, conf ReporterConfig) *Reporter {
	every := conf.Every
	if every <= 0 {
		every = model.DefaultReportEvery
	}
	interval := conf.Interval
	if interval <= 0 {
		interval = model.DefaultReportInterval
	}
	var clk clock.Clock = clock.New()
	if conf.Clock != nil {
		clk = conf.Clock
	}
	report := conf.Report
	if report == nil {
		report = func(Snapshot) {}
	}
	return &Reporter{
		agg:      agg,
		every:    every,
		interval: interval,
		report:   report,
		clock:    clk,
		done:     make(chan struct{}),
	}
}

// Observe ingests one entry and, if N entries have arrived since the last
// report, emits a report immediately on the caller's goroutine.
func (r *Reporter) Observe(e model.Entry) {
	r.agg.mu.Lock()
	defer r.agg.mu.Unlock()

	r.agg.ingestLocked(e)
	if r.agg.sinceReport >= r.every {
		r.emitLocked()
	}
}

// Tick runs one timer-trigger check: it emits only if entries arrived since the
// previous report. It reports whether a snapshot was emitted.
func (r *Reporter) Tick() bool {
	r.agg.mu.Lock()
	defer r.agg.mu.Unlock()

	if !r.agg.dirty {
		return false
	}
	r.emitLocked()
	return true
}

func (r *Reporter) emitLocked() {
	snap := r.agg.snapshotLocked()
	r.agg.markReportedLocked()
	r.report(snap)
}

// Snapshot returns the current aggregate without touching report bookkeeping.
func (r *Reporter) Snapshot() Snapshot {
	return r.agg.Snapshot()
}

// Start creates the interval ticker and runs the timer trigger in the background.
// Calling Start more than once has no effect.
func (r *Reporter) Start() {
	r.startMu.Lock()
	defer r.startMu.Unlock()
	if r.started {
		return
	}
	r.started = true

	ticker := r.clock.Ticker(r.interval)
	r.wg.Add(1)
	go r.tickLoop(ticker)
}

func (r *Reporter) tickLoop(ticker *clock.Ticker) {
	defer r.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Tick()
		case <-r.done:
			return
		}
	}
}

// Stop signals the timer trigger to stop and waits for it to finish.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}
