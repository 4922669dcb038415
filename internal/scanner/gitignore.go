package scanner

import (
	"bufio"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreSet collects .gitignore patterns while the walk descends. Only
// directories the walk actually enters have their .gitignore read.
type ignoreSet struct {
	fs       billy.Filesystem
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

func newIgnoreSet(root string) *ignoreSet {
	return &ignoreSet{fs: osfs.New(root)}
}

// load adds the patterns of rel/.gitignore, scoped to rel, and returns how
// many were added. An empty rel is the root.
func (g *ignoreSet) load(rel string) int {
	if g == nil {
		return 0
	}
	var domain []string
	name := ".gitignore"
	if rel != "" {
		domain = strings.Split(rel, "/")
		name = filepath.Join(filepath.FromSlash(rel), ".gitignore")
	}

	f, err := g.fs.Open(name)
	if err != nil {
		return 0
	}
	defer f.Close()

	added := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		g.patterns = append(g.patterns, gitignore.ParsePattern(line, domain))
		added++
	}
	if added > 0 {
		g.matcher = gitignore.NewMatcher(g.patterns)
	}
	return added
}

// Match reports whether the slash-split path is ignored by the patterns
// loaded so far.
func (g *ignoreSet) Match(path []string, isDir bool) bool {
	return g != nil && g.matcher != nil && g.matcher.Match(path, isDir)
}
