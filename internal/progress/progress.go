// Package progress draws a terminal progress bar for analysis runs.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/AmanS2501/Syntax-Guardian/pkg/analyzer"
)

// Tracker wraps a progress bar fed by analyzer progress callbacks.
type Tracker struct {
	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string
	total int
}

// NewTracker creates a bar on stderr. The total is learned from the first
// callback.
func NewTracker(label string) *Tracker {
	return NewWriterTracker(label, os.Stderr)
}

// NewWriterTracker creates a bar drawing to w.
func NewWriterTracker(label string, w io.Writer) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, out: w, label: label}
}

// Func returns the callback to pass to analysis.WithProgress.
// Safe for concurrent use.
func (t *Tracker) Func() analyzer.ProgressFunc {
	return func(done, total int, _ string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if total != t.total && total > 0 {
			t.bar.ChangeMax(total)
			t.total = total
		}
		_ = t.bar.Set(done)
	}
}

// Total returns the last total seen.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	t.FinishSuccess()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
