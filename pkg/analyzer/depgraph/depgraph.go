// Package depgraph builds the module dependency graph and computes its
// structural metrics: fan-in, fan-out, PageRank and bounded cycle enumeration.
package depgraph

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Defaults.
const (
	DefaultMaxCycles      = 10
	DefaultMaxCycleLength = 8
	DefaultTopN           = 10
	DefaultStepBudget     = 200_000
)

// Edge is a directed dependency From -> To between module keys.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a simple directed graph over module keys. Nodes exist only as
// edge endpoints.
type Graph struct {
	g     *simple.DirectedGraph
	names []string
	ids   map[string]int64
	edges []Edge
	succ  [][]int64
	in    []int
}

// Build constructs the graph. Endpoints are trimmed; edges with an empty
// endpoint and self-loops are dropped; duplicates collapse.
func Build(edges []Edge) *Graph {
	seen := make(map[Edge]bool, len(edges))
	kept := make([]Edge, 0, len(edges))
	nodes := make(map[string]bool)
	for _, e := range edges {
		e = Edge{From: strings.TrimSpace(e.From), To: strings.TrimSpace(e.To)}
		if e.From == "" || e.To == "" || e.From == e.To || seen[e] {
			continue
		}
		seen[e] = true
		kept = append(kept, e)
		nodes[e.From] = true
		nodes[e.To] = true
	}

	names := make([]string, 0, len(nodes))
	for n := range nodes {
		names = append(names, n)
	}
	sort.Strings(names)

	gr := &Graph{
		g:     simple.NewDirectedGraph(),
		names: names,
		ids:   make(map[string]int64, len(names)),
		succ:  make([][]int64, len(names)),
		in:    make([]int, len(names)),
	}
	for i, n := range names {
		gr.ids[n] = int64(i)
		gr.g.AddNode(simple.Node(i))
	}
	for _, e := range kept {
		from, to := gr.ids[e.From], gr.ids[e.To]
		gr.g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		gr.succ[from] = append(gr.succ[from], to)
		gr.in[to]++
	}
	for _, s := range gr.succ {
		sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].From != kept[j].From {
			return kept[i].From < kept[j].From
		}
		return kept[i].To < kept[j].To
	})
	gr.edges = kept
	return gr
}

// Nodes returns the node keys in sorted order.
func (gr *Graph) Nodes() []string { return append([]string(nil), gr.names...) }

// Edges returns the deduplicated edges sorted by (from, to).
func (gr *Graph) Edges() []Edge { return append([]Edge{}, gr.edges...) }

// FanIn returns the in-degree of node, 0 for unknown nodes.
func (gr *Graph) FanIn(node string) int {
	id, ok := gr.ids[node]
	if !ok {
		return 0
	}
	return gr.in[id]
}

// FanOut returns the out-degree of node, 0 for unknown nodes.
func (gr *Graph) FanOut(node string) int {
	id, ok := gr.ids[node]
	if !ok {
		return 0
	}
	return len(gr.succ[id])
}

// PageRank returns the PageRank of every node.
func (gr *Graph) PageRank() map[string]float64 {
	out := make(map[string]float64, len(gr.names))
	if len(gr.names) == 0 {
		return out
	}
	for id, rank := range network.PageRank(gr.g, 0.85, 1e-6) {
		out[gr.names[id]] = rank
	}
	return out
}

// Cycles enumerates simple cycles, at most maxCycles of them, each
// truncated to maxLen nodes. The search is confined to strongly connected
// components and stops after stepBudget DFS steps. The second return
// value reports whether a cycle or a step was refused by either bound.
// Output is deterministic: cycles start at their smallest key and are
// found in key order.
func (gr *Graph) Cycles(maxCycles, maxLen, stepBudget int) ([][]string, bool) {
	cycles := [][]string{}
	if maxCycles <= 0 || maxLen <= 0 {
		return cycles, false
	}

	comp := make([]int, len(gr.names))
	for i := range comp {
		comp[i] = -1
	}
	var members [][]int64
	for ci, scc := range topo.TarjanSCC(gr.g) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]int64, len(scc))
		for i, n := range scc {
			ids[i] = n.ID()
			comp[n.ID()] = ci
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		members = append(members, ids)
	}
	sort.Slice(members, func(i, j int) bool { return members[i][0] < members[j][0] })

	s := &cycleSearch{gr: gr, comp: comp, maxCycles: maxCycles, maxLen: maxLen, budget: stepBudget}
search:
	for _, ids := range members {
		for _, start := range ids {
			if s.full() {
				break search
			}
			if s.outOfSteps() {
				s.truncated = true
				break search
			}
			s.start = start
			s.onPath = map[int64]bool{start: true}
			s.path = []int64{start}
			s.dfs(start)
		}
	}
	if s.full() {
		s.truncated = true
		s.found = s.found[:maxCycles]
	}
	return s.cycles(cycles), s.truncated
}

// cycleSearch looks for one cycle past maxCycles so that a graph with
// exactly maxCycles cycles is not reported as truncated.
type cycleSearch struct {
	gr        *Graph
	comp      []int
	maxCycles int
	maxLen    int
	budget    int
	steps     int
	start     int64
	path      []int64
	onPath    map[int64]bool
	found     [][]int64
	truncated bool
}

func (s *cycleSearch) full() bool {
	return len(s.found) > s.maxCycles
}

func (s *cycleSearch) outOfSteps() bool {
	return s.budget > 0 && s.steps >= s.budget
}

func (s *cycleSearch) dfs(v int64) {
	for _, w := range s.gr.succ[v] {
		if s.full() {
			return
		}
		if s.outOfSteps() {
			s.truncated = true
			return
		}
		s.steps++
		switch {
		case w == s.start:
			n := min(len(s.path), s.maxLen)
			s.found = append(s.found, append([]int64(nil), s.path[:n]...))
		case w > s.start && !s.onPath[w] && s.comp[w] == s.comp[s.start]:
			s.onPath[w] = true
			s.path = append(s.path, w)
			s.dfs(w)
			s.path = s.path[:len(s.path)-1]
			delete(s.onPath, w)
		}
	}
}

func (s *cycleSearch) cycles(out [][]string) [][]string {
	for _, c := range s.found {
		names := make([]string, len(c))
		for i, id := range c {
			names[i] = s.gr.names[id]
		}
		out = append(out, names)
	}
	return out
}
