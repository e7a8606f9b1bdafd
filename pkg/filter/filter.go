// Package filter decides which walked entries end up in the output.
package filter

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"dirdump/pkg/config"
	"dirdump/pkg/walk"
)

// Verdict is the outcome of Include.
type Verdict int

const (
	Included Verdict = iota
	Excluded
	TooLarge
	WrongExtension
	Binary
	Unreadable
)

func (v Verdict) String() string {
	switch v {
	case Included:
		return "included"
	case Excluded:
		return "excluded"
	case TooLarge:
		return "too-large"
	case WrongExtension:
		return "extension"
	case Binary:
		return "binary"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Filter applies the exclude, size and file type rules of a Config. It keeps
// no state between calls.
type Filter struct {
	patterns   []string
	maxBytes   int64
	exploreAll bool
	extensions config.Extensions
	outputDir  string
	outputStem string
	outputExt  string
	outputPath string
	sniff      func(path string) (bool, error)
	logger     *zap.Logger
}

// New creates a Filter for cfg.
func New(cfg config.Config, logger *zap.Logger) *Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	ext := filepath.Ext(cfg.OutputPath)
	return &Filter{
		patterns:   cfg.ExcludePatterns,
		maxBytes:   cfg.MaxFileBytes,
		exploreAll: cfg.ExploreAllFiles,
		extensions: cfg.Extensions,
		outputDir:  filepath.Dir(cfg.OutputPath),
		outputStem: strings.TrimSuffix(filepath.Base(cfg.OutputPath), ext),
		outputExt:  ext,
		outputPath: cfg.OutputPath,
		sniff:      SniffFile,
		logger:     logger,
	}
}

// Prune implements walk.Pruner: excluded directories are never descended into.
func (f *Filter) Prune(dir walk.Entry) bool {
	return f.Excluded(dir)
}

// Excluded reports whether e matches an exclude pattern or is one of the
// files this run writes.
func (f *Filter) Excluded(e walk.Entry) bool {
	if MatchAny(f.patterns, e.Rel) {
		return true
	}
	return !e.IsDir && f.isOwnOutput(e.Path)
}

// Include classifies a file entry. Directories are only checked against the
// exclude rules. Files that pass the exclude, size and extension rules are
// still rejected as Binary when their extension or first bytes say so.
func (f *Filter) Include(e walk.Entry) Verdict {
	if f.Excluded(e) {
		return Excluded
	}
	if e.IsDir {
		return Included
	}
	if f.maxBytes > 0 && e.Size > f.maxBytes {
		return TooLarge
	}
	if !f.exploreAll && !f.extensions.MatchName(e.Name) {
		return WrongExtension
	}

	// Every candidate is checked for binary content, whatever selected it.
	if IsBinaryExtension(e.Name) {
		return Binary
	}
	binary, err := f.sniff(e.Path)
	if err != nil {
		f.logger.Warn("Failed to check if file is binary", zap.String("path", e.Path), zap.Error(err))
		return Unreadable
	}
	if binary {
		return Binary
	}
	return Included
}

// isOwnOutput matches the output path and its numbered chunk siblings
// (out.md, out.1.md, out.2.md, ...).
func (f *Filter) isOwnOutput(path string) bool {
	if f.outputPath == "" {
		return false
	}
	if path == f.outputPath {
		return true
	}
	if filepath.Dir(path) != f.outputDir {
		return false
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, f.outputStem+".") || !strings.HasSuffix(name, f.outputExt) {
		return false
	}
	index := strings.TrimSuffix(strings.TrimPrefix(name, f.outputStem+"."), f.outputExt)
	if index == "" {
		return false
	}
	for _, r := range index {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
