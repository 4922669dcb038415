package fileproc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
)

func records(n int) []ir.FileRecord {
	out := make([]ir.FileRecord, n)
	for i := range out {
		out[i] = ir.FileRecord{Path: fmt.Sprintf("file%03d.py", i), Language: ir.LangPython}
	}
	return out
}

func TestMapRecordsPreservesOrder(t *testing.T) {
	recs := records(100)

	results, errs := MapRecords(context.Background(), recs, 8, func(p *parser.Parser, rec ir.FileRecord) (string, error) {
		if p == nil {
			return "", errors.New("nil parser")
		}
		return rec.Path, nil
	}, nil)

	require.Nil(t, errs)
	require.Len(t, results, len(recs))
	for i, r := range results {
		if r != recs[i].Path {
			t.Fatalf("results[%d] = %s, want %s", i, r, recs[i].Path)
		}
	}
}

func TestMapRecordsEmpty(t *testing.T) {
	results, errs := MapRecords(context.Background(), nil, 0, func(*parser.Parser, ir.FileRecord) (int, error) {
		return 1, nil
	}, nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Nil(t, errs)
}

func TestMapRecordsKeepsDegradedResults(t *testing.T) {
	recs := records(3)
	boom := errors.New("boom")

	results, errs := MapRecords(context.Background(), recs, 2, func(_ *parser.Parser, rec ir.FileRecord) (string, error) {
		if rec.Path == "file001.py" {
			return "fallback", boom
		}
		return "ok", nil
	}, nil)

	require.NotNil(t, errs)
	assert.Equal(t, []string{"ok", "fallback", "ok"}, results)
	assert.Equal(t, 1, errs.Len())
	assert.ErrorIs(t, errs.Errors[0], boom)
	assert.Contains(t, errs.Error(), "file001.py")
}

func TestMapRecordsProgress(t *testing.T) {
	var count atomic.Int32
	_, _ = MapRecords(context.Background(), records(25), 4, func(*parser.Parser, ir.FileRecord) (int, error) {
		return 0, nil
	}, func() { count.Add(1) })
	assert.Equal(t, int32(25), count.Load())
}

func TestMapRecordsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results, errs := MapRecords(ctx, records(10), 2, func(*parser.Parser, ir.FileRecord) (int, error) {
		calls.Add(1)
		return 1, nil
	}, nil)

	require.NotNil(t, errs)
	assert.Equal(t, 10, errs.Len())
	assert.Zero(t, calls.Load())
	assert.Len(t, results, 10)
	assert.ErrorIs(t, errs.Errors[0], context.Canceled)
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 3, Workers(3))
	assert.Greater(t, Workers(0), 0)
}

func TestProcessingErrorsEmpty(t *testing.T) {
	var errs ProcessingErrors
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no errors", errs.Error())
}
