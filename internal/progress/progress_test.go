package progress

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerFunc(t *testing.T) {
	var buf bytes.Buffer
	tr := NewWriterTracker("Analyzing", &buf)
	fn := tr.Func()

	var wg sync.WaitGroup
	for i := 1; i <= 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(i, 9, "x")
		}()
	}
	wg.Wait()

	assert.Equal(t, 9, tr.Total())
	tr.FinishSuccess()
}

func TestTrackerFinishError(t *testing.T) {
	var buf bytes.Buffer
	tr := NewWriterTracker("Analyzing", &buf)
	tr.Func()(1, 2, "a.py")
	tr.FinishError(errors.New("boom"))
	assert.Contains(t, buf.String(), "Analyzing error: boom")
}
