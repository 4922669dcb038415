package analyzer

import "sync/atomic"

// ProgressFunc is called to report analysis progress.
// done is the number of finished units, total the expected count and
// label names the unit that just finished (a file path or a stage name).
type ProgressFunc func(done, total int, label string)

// Tracker counts finished units of work across goroutines.
type Tracker struct {
	total    atomic.Int64
	done     atomic.Int64
	callback ProgressFunc
}

// NewTracker creates a tracker reporting to callback, which may be nil.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Expect raises the expected total by n.
func (t *Tracker) Expect(n int) {
	t.total.Add(int64(n))
}

// Tick marks one unit as finished.
func (t *Tracker) Tick(label string) {
	done := int(t.done.Add(1))
	if t.callback != nil {
		t.callback(done, int(t.total.Load()), label)
	}
}

// Done returns the finished count.
func (t *Tracker) Done() int { return int(t.done.Load()) }

// Total returns the expected count.
func (t *Tracker) Total() int { return int(t.total.Load()) }
