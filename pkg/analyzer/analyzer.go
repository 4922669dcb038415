// Package analyzer defines the contract shared by every detector and the
// stage bookkeeping the orchestrator reports.
package analyzer

import (
	"context"
	"time"

	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
	"github.com/AmanS2501/Syntax-Guardian/pkg/models"
	"github.com/AmanS2501/Syntax-Guardian/pkg/source"
)

// Input is the read-only view of a scanned project handed to detectors.
type Input struct {
	Root    string
	Files   []ir.FileRecord
	Modules []ir.ModuleUnit
	Source  source.ContentSource
}

// Functions returns every extracted function across all modules in module order.
func (in Input) Functions() []ir.FunctionUnit {
	n := 0
	for _, m := range in.Modules {
		n += len(m.Functions)
	}
	out := make([]ir.FunctionUnit, 0, n)
	for _, m := range in.Modules {
		out = append(out, m.Functions...)
	}
	return out
}

// Result is what a detector produces. Partial marks output cut short by a
// budget; Note says why.
type Result struct {
	Findings []models.Finding
	Partial  bool
	Note     string
}

// Detector inspects an Input and emits findings of a single category.
// Implementations must not mutate the Input.
type Detector interface {
	Name() string
	Detect(ctx context.Context, in Input) (Result, error)
}

// Outcome is the terminal state of a pipeline stage.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
	OutcomePartial Outcome = "partial"
)

func (o Outcome) String() string { return string(o) }

// StageResult records how one stage ended.
type StageResult struct {
	Stage    string        `json:"stage"`
	Outcome  Outcome       `json:"outcome"`
	Findings int           `json:"findings"`
	Duration time.Duration `json:"duration_ns"`
	Note     string        `json:"note,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// OK reports whether the stage produced usable output.
func (s StageResult) OK() bool {
	return s.Outcome == OutcomeSuccess || s.Outcome == OutcomePartial
}
