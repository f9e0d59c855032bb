package stats

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/tinytelemetry/logrelay/internal/model"
)

type reporterHarness struct {
	mock     *clock.Mock
	reporter *Reporter
	reports  chan Snapshot
}

func newReporterHarness(t *testing.T, every int, interval time.Duration) *reporterHarness {
	t.Helper()

	mock := clock.NewMock()
	mock.Set(time.Date(2024, time.January, 1, 10, 0, 0, 0, time.Local))

	h := &reporterHarness{
		mock:    mock,
		reports: make(chan Snapshot, 16),
	}
	agg := NewAggregator(AggregatorConfig{Clock: mock})
	h.reporter = NewReporter(agg, ReporterConfig{
		Every:    every,
		Interval: interval,
		Clock:    mock,
		Report:   func(s Snapshot) { h.reports <- s },
	})
	h.reporter.Start()
	t.Cleanup(h.reporter.Stop)
	return h
}

func (h *reporterHarness) observe(n int) {
	for i := 0; i < n; i++ {
		h.reporter.Observe(model.Entry{
			Timestamp: h.mock.Now(),
			Level:     model.LevelInfo,
			Message:   "hello",
			Length:    5,
		})
	}
}

func (h *reporterHarness) expectReport(t *testing.T) Snapshot {
	t.Helper()
	select {
	case s := <-h.reports:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for report")
		return Snapshot{}
	}
}

func (h *reporterHarness) expectNoReport(t *testing.T) {
	t.Helper()
	select {
	case s := <-h.reports:
		t.Fatalf("unexpected report: %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReporter_CountTriggerFiresOncePerN(t *testing.T) {
	t.Parallel()

	h := newReporterHarness(t, 3, 10*time.Second)

	h.observe(3)
	if s := h.expectReport(t); s.Total != 3 {
		t.Fatalf("report Total = %d, want 3", s.Total)
	}
	h.expectNoReport(t)

	// The count was reset: two more entries are not enough.
	h.observe(2)
	h.expectNoReport(t)

	h.observe(1)
	if s := h.expectReport(t); s.Total != 6 {
		t.Fatalf("second report Total = %d, want 6", s.Total)
	}
}

func TestReporter_CountReportClearsDirty(t *testing.T) {
	t.Parallel()

	h := newReporterHarness(t, 3, 10*time.Second)

	h.observe(3)
	h.expectReport(t)

	// Nothing new since the count-triggered report: the tick must stay quiet.
	h.mock.Add(10 * time.Second)
	h.expectNoReport(t)
}

func TestReporter_TimerTriggerOnlyWhenDirty(t *testing.T) {
	t.Parallel()

	h := newReporterHarness(t, 3, 10*time.Second)

	h.observe(1)
	h.expectNoReport(t)

	h.mock.Add(10 * time.Second)
	if s := h.expectReport(t); s.Total != 1 {
		t.Fatalf("timer report Total = %d, want 1", s.Total)
	}

	h.mock.Add(10 * time.Second)
	h.expectNoReport(t)
}

func TestReporter_TimerReportResetsCount(t *testing.T) {
	t.Parallel()

	h := newReporterHarness(t, 3, 10*time.Second)

	h.observe(2)
	h.mock.Add(10 * time.Second)
	h.expectReport(t)

	// Two entries were reported by the timer; the next count report needs three new ones.
	h.observe(2)
	h.expectNoReport(t)
	h.observe(1)
	if s := h.expectReport(t); s.Total != 5 {
		t.Fatalf("count report Total = %d, want 5", s.Total)
	}
}

func TestReporter_TickWithoutStart(t *testing.T) {
	t.Parallel()

	var got []Snapshot
	r := NewReporter(NewAggregator(), ReporterConfig{
		Every:  100,
		Report: func(s Snapshot) { got = append(got, s) },
	})

	if r.Tick() {
		t.Fatal("Tick() emitted on a clean aggregator")
	}
	r.Observe(model.Entry{Timestamp: time.Now(), Level: model.LevelWarning, Length: 2})
	if !r.Tick() {
		t.Fatal("Tick() did not emit after an entry")
	}
	if r.Tick() {
		t.Fatal("Tick() emitted twice for one entry")
	}
	if len(got) != 1 || got[0].Levels[model.LevelWarning] != 1 {
		t.Fatalf("reports = %+v", got)
	}
}

func TestReporter_ConcurrentTriggersDoNotLoseEntries(t *testing.T) {
	t.Parallel()

	const writers, perWriter, every = 8, 250, 7

	var mu sync.Mutex
	var reported []int64
	agg := NewAggregator()
	r := NewReporter(agg, ReporterConfig{
		Every: every,
		Report: func(s Snapshot) {
			mu.Lock()
			reported = append(reported, s.Total)
			mu.Unlock()
		},
	})

	stop := make(chan struct{})
	var tickers sync.WaitGroup
	tickers.Add(1)
	go func() {
		defer tickers.Done()
		for {
			select {
			case <-stop:
				return
			default:
				r.Tick()
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				r.Observe(model.Entry{Timestamp: time.Now(), Level: model.LevelInfo, Length: 1})
			}
		}()
	}
	wg.Wait()
	close(stop)
	tickers.Wait()
	r.Tick()

	if got := r.Snapshot().Total; got != writers*perWriter {
		t.Fatalf("Total = %d, want %d", got, writers*perWriter)
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(reported); i++ {
		if reported[i] <= reported[i-1] {
			t.Fatalf("reports not strictly increasing at %d: %v", i, reported)
		}
	}
	if last := reported[len(reported)-1]; last != writers*perWriter {
		t.Fatalf("last report Total = %d, want %d", last, writers*perWriter)
	}
}

func TestReporter_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	r := NewReporter(NewAggregator(), ReporterConfig{Clock: clock.NewMock()})
	r.Start()
	r.Start()
	r.Stop()
	r.Stop()
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	s := Snapshot{
		Total: 2,
		Levels: map[model.Level]int64{
			model.LevelDebug: 0, model.LevelInfo: 1, model.LevelWarning: 0, model.LevelError: 1,
		},
		Recent:     2,
		MinLen:     5,
		MaxLen:     6,
		HasLengths: true,
		TotalLen:   11,
	}
	want := strings.Join([]string{
		"Total Messages: 2",
		"Debug: 0",
		"Info: 1",
		"Warning: 0",
		"Error: 1",
		"Recent messages: 2",
		"Largest length: 6",
		"Smallest length: 5",
		"Average length: 5",
	}, "\n") + "\n"

	if got := FormatReport(s); got != want {
		t.Fatalf("FormatReport =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatReport_Empty(t *testing.T) {
	t.Parallel()

	got := FormatReport(NewAggregator().Snapshot())
	for _, want := range []string{"Total Messages: 0", "Largest length: N/A", "Smallest length: N/A", "Average length: N/A"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatReport missing %q:\n%s", want, got)
		}
	}
}
