// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/parser"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Len returns the number of collected errors.
func (e *ProcessingErrors) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors)
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// Workers resolves a configured worker count; values <= 0 mean 2x NumCPU.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// parserPool hands each running worker its own parser and reuses them
// across files.
type parserPool struct {
	idle chan *parser.Parser
}

func newParserPool(size int) *parserPool {
	return &parserPool{idle: make(chan *parser.Parser, size)}
}

func (p *parserPool) get() *parser.Parser {
	select {
	case psr := <-p.idle:
		return psr
	default:
		return parser.New()
	}
}

func (p *parserPool) put(psr *parser.Parser) {
	select {
	case p.idle <- psr:
	default:
		psr.Close()
	}
}

func (p *parserPool) close() {
	close(p.idle)
	for psr := range p.idle {
		psr.Close()
	}
}

// MapRecords calls fn for every record in parallel and returns the results in
// input order. fn's result is kept even when it also returns an error, so a
// degraded value can stand in for a failed file; errors are collected and
// returned alongside. Records not started before ctx is done get the zero value
// and a context error.
func MapRecords[T any](ctx context.Context, records []ir.FileRecord, workers int, fn func(*parser.Parser, ir.FileRecord) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	if len(records) == 0 {
		return []T{}, nil
	}

	maxWorkers := Workers(workers)
	results := make([]T, len(records))
	errs := &ProcessingErrors{}
	parsers := newParserPool(maxWorkers)
	defer parsers.close()

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, rec := range records {
		p.Go(func() {
			if onProgress != nil {
				defer onProgress()
			}
			if err := ctx.Err(); err != nil {
				errs.Add(rec.Path, err)
				return
			}

			psr := parsers.get()
			defer parsers.put(psr)

			result, err := fn(psr, rec)
			results[i] = result
			if err != nil {
				errs.Add(rec.Path, err)
			}
		})
	}
	p.Wait()

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
