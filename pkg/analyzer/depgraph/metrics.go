package depgraph

import "sort"

// Ranked is a node and a metric value.
type Ranked struct {
	Node  string `json:"node"`
	Value int    `json:"value"`
}

// Metrics is the structural summary of a dependency graph.
type Metrics struct {
	Nodes           int                `json:"nodes"`
	Edges           int                `json:"edges"`
	FanIn           map[string]int     `json:"fan_in"`
	FanOut          map[string]int     `json:"fan_out"`
	PageRank        map[string]float64 `json:"pagerank"`
	TopFanIn        []Ranked           `json:"top_fan_in"`
	TopFanOut       []Ranked           `json:"top_fan_out"`
	Cycles          [][]string         `json:"cycles"`
	CyclesTruncated bool               `json:"cycles_truncated,omitempty"`
}

// Analyzer computes Metrics with configurable bounds.
type Analyzer struct {
	maxCycles  int
	maxLen     int
	topN       int
	stepBudget int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxCycles caps the number of cycles reported.
func WithMaxCycles(n int) Option {
	return func(a *Analyzer) { a.maxCycles = n }
}

// WithMaxCycleLength caps the nodes reported per cycle.
func WithMaxCycleLength(n int) Option {
	return func(a *Analyzer) { a.maxLen = n }
}

// WithTopN sets the length of the top fan-in/fan-out lists.
func WithTopN(n int) Option {
	return func(a *Analyzer) { a.topN = n }
}

// WithStepBudget bounds the cycle search.
func WithStepBudget(n int) Option {
	return func(a *Analyzer) { a.stepBudget = n }
}

// New creates a graph analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		maxCycles:  DefaultMaxCycles,
		maxLen:     DefaultMaxCycleLength,
		topN:       DefaultTopN,
		stepBudget: DefaultStepBudget,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the metrics of gr.
func (a *Analyzer) Analyze(gr *Graph) *Metrics {
	m := &Metrics{
		Nodes:    len(gr.names),
		Edges:    len(gr.edges),
		FanIn:    make(map[string]int, len(gr.names)),
		FanOut:   make(map[string]int, len(gr.names)),
		PageRank: gr.PageRank(),
	}
	for _, n := range gr.names {
		m.FanIn[n] = gr.FanIn(n)
		m.FanOut[n] = gr.FanOut(n)
	}
	m.TopFanIn = Top(m.FanIn, a.topN)
	m.TopFanOut = Top(m.FanOut, a.topN)
	m.Cycles, m.CyclesTruncated = gr.Cycles(a.maxCycles, a.maxLen, a.stepBudget)
	return m
}

// Top returns the n largest entries ordered by value descending, then key ascending.
func Top(values map[string]int, n int) []Ranked {
	out := make([]Ranked, 0, len(values))
	for k, v := range values {
		out = append(out, Ranked{Node: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Node < out[j].Node
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Metrics computes the metrics of gr with default bounds.
func (gr *Graph) Metrics() *Metrics {
	return New().Analyze(gr)
}
