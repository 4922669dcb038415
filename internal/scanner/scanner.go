// Package scanner discovers the source files of an analysis run.
package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/AmanS2501/Syntax-Guardian/pkg/config"
	"github.com/AmanS2501/Syntax-Guardian/pkg/ir"
)

// ErrInvalidRoot is returned when the root is missing or not a directory.
var ErrInvalidRoot = errors.New("invalid root")

// HardExcludedDirs are never descended into, whatever the patterns say.
var HardExcludedDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	".venv":         true,
	"venv":          true,
	"env":           true,
	"__pycache__":   true,
	"node_modules":  true,
	"dist":          true,
	"build":         true,
	".next":         true,
	".turbo":        true,
	".idea":         true,
	".vscode":       true,
	".cache":        true,
	".pytest_cache": true,
}

// SkipReason says why a candidate file was left out.
type SkipReason string

const (
	SkipExcluded    SkipReason = "excluded"
	SkipGitignored  SkipReason = "gitignored"
	SkipTooLarge    SkipReason = "too_large"
	SkipBinary      SkipReason = "binary"
	SkipUnreadable  SkipReason = "unreadable"
	SkipSymlink     SkipReason = "symlink"
	SkipUnsupported SkipReason = "unsupported"
)

func (r SkipReason) String() string { return string(r) }

// binarySniffLen is how many leading bytes are checked for NUL.
const binarySniffLen = 8000

// Stats summarizes a walk.
type Stats struct {
	Selected        int                `json:"selected"`
	Skipped         map[SkipReason]int `json:"skipped"`
	InvalidPatterns []string           `json:"invalid_patterns,omitempty"`
}

func (s *Stats) skip(r SkipReason) {
	s.Skipped[r]++
}

// Scanner finds source files in a directory.
type Scanner struct {
	config  config.ScanConfig
	include []string
	exclude []string
	invalid []string
	logger  *slog.Logger
	onSkip  func(SkipReason)
}

// Option is a functional option for configuring Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for per-file skip messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSkipHook registers a callback invoked for every skipped file.
func WithSkipHook(fn func(SkipReason)) Option {
	return func(s *Scanner) {
		s.onSkip = fn
	}
}

// NewScanner creates a new file scanner. Invalid glob patterns are dropped
// and reported in Stats.InvalidPatterns.
func NewScanner(cfg config.ScanConfig, opts ...Option) *Scanner {
	s := &Scanner{
		config: cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	s.include = s.validPatterns(cfg.Include)
	s.exclude = s.validPatterns(cfg.Exclude)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) validPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(p)), "./")
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			s.invalid = append(s.invalid, p)
			continue
		}
		out = append(out, p)
	}
	return out
}

// Walk returns the selected files under root, sorted by path. Paths are
// slash-separated and relative to root. The only error is an unusable root.
func (s *Scanner) Walk(root string) ([]ir.FileRecord, Stats, error) {
	stats := Stats{Skipped: make(map[SkipReason]int), InvalidPatterns: s.invalid}

	info, err := os.Stat(root)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	// Resolve root for symlink containment checks
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	var ignore *ignoreSet
	if s.config.Gitignore {
		ignore = newIgnoreSet(absRoot)
		s.loadIgnore(ignore, "")
	}

	records := make([]ir.FileRecord, 0, 256)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are skipped, never fatal
			if d != nil && d.IsDir() && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if HardExcludedDirs[d.Name()] || s.dirExcluded(rel) {
				return filepath.SkipDir
			}
			if ignore.Match(strings.Split(rel, "/"), true) {
				return filepath.SkipDir
			}
			s.loadIgnore(ignore, rel)
			return nil
		}

		if !s.included(rel) {
			return nil
		}
		if rec, reason, ok := s.inspect(absRoot, path, rel, d, ignore); ok {
			records = append(records, rec)
		} else {
			stats.skip(reason)
			s.logger.Debug("skipping file", "path", rel, "reason", reason)
			if s.onSkip != nil {
				s.onSkip(reason)
			}
		}
		return nil
	})
	if walkErr != nil {
		return nil, stats, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	stats.Selected = len(records)
	return records, stats, nil
}

func (s *Scanner) loadIgnore(ignore *ignoreSet, rel string) {
	if n := ignore.load(rel); n > 0 {
		s.logger.Debug("read gitignore", "dir", rel, "patterns", n)
	}
}

func (s *Scanner) inspect(absRoot, path, rel string, d fs.DirEntry, ignore *ignoreSet) (ir.FileRecord, SkipReason, bool) {
	if s.excluded(rel) {
		return ir.FileRecord{}, SkipExcluded, false
	}
	if ignore.Match(strings.Split(rel, "/"), false) {
		return ir.FileRecord{}, SkipGitignored, false
	}

	var size int64
	if d.Type()&fs.ModeSymlink != 0 {
		if !s.config.FollowSymlinks {
			return ir.FileRecord{}, SkipSymlink, false
		}
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil || !isWithinRoot(resolved, absRoot) {
			return ir.FileRecord{}, SkipSymlink, false
		}
		info, err := os.Stat(resolved)
		if err != nil || !info.Mode().IsRegular() {
			return ir.FileRecord{}, SkipSymlink, false
		}
		size = info.Size()
	} else {
		if !d.Type().IsRegular() {
			return ir.FileRecord{}, SkipUnreadable, false
		}
		info, err := d.Info()
		if err != nil {
			return ir.FileRecord{}, SkipUnreadable, false
		}
		size = info.Size()
	}

	if s.config.MaxBytes > 0 && size > s.config.MaxBytes {
		return ir.FileRecord{}, SkipTooLarge, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ir.FileRecord{}, SkipUnreadable, false
	}
	if bytes.IndexByte(data[:min(len(data), binarySniffLen)], 0) >= 0 {
		return ir.FileRecord{}, SkipBinary, false
	}

	return ir.FileRecord{
		Path:     rel,
		Size:     size,
		Lines:    bytes.Count(data, []byte("\n")) + 1,
		Language: ir.DetectLanguage(rel),
	}, "", true
}

func (s *Scanner) included(rel string) bool {
	for _, p := range s.include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) excluded(rel string) bool {
	for _, p := range s.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// dirExcluded reports whether an exclude pattern covers the directory.
// "a/**" prunes the directory a itself.
func (s *Scanner) dirExcluded(rel string) bool {
	for _, p := range s.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if prefix, found := strings.CutSuffix(p, "/**"); found {
			if ok, _ := doublestar.Match(prefix, rel); ok {
				return true
			}
		}
	}
	return false
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}
