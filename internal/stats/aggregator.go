// Package stats maintains rolling aggregates over parsed log entries and emits
// periodic reports.
package stats

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/tinytelemetry/logrelay/internal/model"
)

// AggregatorConfig holds tunable parameters for the aggregator.
type AggregatorConfig struct {
	Retention time.Duration // recent-window horizon, default model.RetentionHorizon
	Clock     clock.Clock   // time source, default real clock
}

// Aggregator holds the running counters for one collector run.
// All methods are safe for concurrent use; ingestion, snapshots and the
// report bookkeeping share one mutex.
type Aggregator struct {
	mu    sync.Mutex
	clock clock.Clock

	levels   [model.NumLevels]int64
	total    int64
	minLen   int
	maxLen   int
	hasLen   bool
	totalLen int64
	window   *Window

	sinceReport int
	dirty       bool
}

// NewAggregator creates an aggregator with all level counters at zero.
func NewAggregator(conf ...AggregatorConfig) *Aggregator {
	retention := model.RetentionHorizon
	var clk clock.Clock = clock.New()
	if len(conf) > 0 {
		if conf[0].Retention > 0 {
			retention = conf[0].Retention
		}
		if conf[0].Clock != nil {
			clk = conf[0].Clock
		}
	}
	return &Aggregator{
		clock:  clk,
		window: NewWindow(retention),
	}
}

// Ingest folds one entry into the counters.
func (a *Aggregator) Ingest(e model.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ingestLocked(e)
}

// Snapshot evicts expired window entries and returns a consistent copy of the
// counters. It does not affect report bookkeeping.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) ingestLocked(e model.Entry) {
	a.window.Add(e.Timestamp)
	a.window.Evict(a.clock.Now())

	if e.Level.Valid() {
		a.levels[e.Level]++
	}
	a.total++

	// Zero-length messages count as messages but never as length extrema.
	if e.Length > 0 {
		if !a.hasLen {
			a.minLen, a.maxLen, a.hasLen = e.Length, e.Length, true
		} else {
			a.minLen = min(a.minLen, e.Length)
			a.maxLen = max(a.maxLen, e.Length)
		}
		a.totalLen += int64(e.Length)
	}

	a.sinceReport++
	a.dirty = true
}

func (a *Aggregator) snapshotLocked() Snapshot {
	now := a.clock.Now()
	a.window.Evict(now)

	levels := make(map[model.Level]int64, model.NumLevels)
	for _, l := range model.Levels {
		levels[l] = a.levels[l]
	}
	return Snapshot{
		TakenAt:    now,
		Total:      a.total,
		Levels:     levels,
		Recent:     a.window.Len(),
		MinLen:     a.minLen,
		MaxLen:     a.maxLen,
		HasLengths: a.hasLen,
		TotalLen:   a.totalLen,
	}
}

// markReportedLocked resets the since-report count and the dirty flag after any emission.
func (a *Aggregator) markReportedLocked() {
	a.sinceReport = 0
	a.dirty = false
}

// Snapshot is a point-in-time copy of the aggregate counters.
type Snapshot struct {
	TakenAt    time.Time             `json:"taken_at"`
	Total      int64                 `json:"total"`
	Levels     map[model.Level]int64 `json:"levels"`
	Recent     int                   `json:"recent"`
	MinLen     int                   `json:"min_length"`
	MaxLen     int                   `json:"max_length"`
	HasLengths bool                  `json:"has_lengths"`
	TotalLen   int64                 `json:"total_length"`
}

// Average returns totalLen/total using integer division. ok is false when no
// messages have been counted.
func (s Snapshot) Average() (avg int64, ok bool) {
	if s.Total <= 0 {
		return 0, false
	}
	return s.TotalLen / s.Total, true
}
