// Package config builds the immutable Config value consumed by the dump pipeline.
//
// A Config is assembled once from three layers, lowest priority first: the
// built-in defaults returned by DefaultConfig, DIRDUMP_* environment variables
// and the caller's option map. Option names are mapped onto their canonical
// spelling through a static alias table before any value is read, so the
// themed vocabulary and the canonical one behave identically.
package config

import (
	"sort"
	"strings"
)

// Format selects how rendered blocks are laid out.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// Ext returns the file extension, with leading dot, used for default output paths.
func (f Format) Ext() string {
	return "." + string(f)
}

// Unbounded is the SplitBytes value that disables splitting.
const Unbounded int64 = 0

// Extensions is the set of accepted file extensions, or the all-text sentinel.
// Extensions are stored lowercase without a leading dot.
type Extensions struct {
	allText bool
	set     map[string]struct{}
}

// AllTextExtensions returns the sentinel that accepts any file that looks like text.
func AllTextExtensions() Extensions {
	return Extensions{allText: true}
}

// NewExtensions builds an extension set. Leading dots and case are ignored.
func NewExtensions(exts ...string) Extensions {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		e = strings.TrimLeft(e, ".")
		if e == "" {
			continue
		}
		set[e] = struct{}{}
	}
	return Extensions{set: set}
}

// AllText reports whether e is the all-text sentinel.
func (e Extensions) AllText() bool {
	return e.allText
}

// Contains reports whether ext (with or without leading dot) is in the set.
func (e Extensions) Contains(ext string) bool {
	_, ok := e.set[strings.TrimLeft(strings.ToLower(ext), ".")]
	return ok
}

// MatchName reports whether any dot-suffix of name is in the set, so that
// "view.blade.php" matches both "blade.php" and "php" and ".env" matches "env".
func (e Extensions) MatchName(name string) bool {
	if e.allText {
		return true
	}
	lower := strings.ToLower(name)
	for i := 0; i < len(lower); i++ {
		if lower[i] != '.' {
			continue
		}
		if _, ok := e.set[lower[i+1:]]; ok {
			return true
		}
	}
	return false
}

// List returns the sorted extensions. It is empty for the all-text sentinel.
func (e Extensions) List() []string {
	out := make([]string, 0, len(e.set))
	for ext := range e.set {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Config is the normalized, read-only input of every pipeline component.
// Paths are absolute and cleaned. Exclude patterns are slash-separated and
// relative to TargetDir. A pattern with a leading slash is a single name
// anchored at TargetDir.
type Config struct {
	ProjectRoot         string
	TargetDir           string
	OutputPath          string
	Format              Format
	SplitBytes          int64 // Unbounded (0) disables splitting
	Extensions          Extensions
	ExcludePatterns     []string
	ExploreAllFiles     bool  // skip the extension filter, keep size and exclude rules
	MaxFileBytes        int64 // 0 means no ceiling
	EmitStructure       bool
	StructureMaxEntries int // 0 means no cap
}

// Unbounded reports whether output splitting is disabled.
func (c Config) Unbounded() bool {
	return c.SplitBytes <= Unbounded
}

const (
	// DefaultMaxFileBytes is the size ceiling above which files are skipped.
	DefaultMaxFileBytes int64 = 8 << 20
	// DefaultStructureMaxEntries caps the structure listing.
	DefaultStructureMaxEntries = 2000
	// MiB is the multiplier applied to split-mb.
	MiB int64 = 1 << 20
)

// DefaultExtensions lists the extensions accepted when none are given.
func DefaultExtensions() []string {
	return []string{
		"php", "twig", "html", "htm", "blade.php", "js", "ts", "tsx", "jsx", "css", "scss", "sass",
		"json", "yml", "yaml", "xml", "csv", "tsv", "sql", "md", "txt", "env", "ini", "conf", "toml",
		"gitignore", "gitattributes", "editorconfig", "sh", "bash", "zsh", "ps1", "bat", "cmd",
		"go", "mod", "sum", "py", "rb", "rs", "java", "kt", "c", "h", "cpp", "hpp", "cs", "swift",
	}
}

// DefaultExcludes lists the directory names and target-relative prefixes that
// are always excluded, already in normalized form. "/dist" and "/build" only
// match at the top of the target. User excludes are appended to these.
func DefaultExcludes() []string {
	return []string{
		".git", "vendor", "node_modules", "storage", "var", ".idea", ".vscode",
		"__pycache__", ".pytest_cache", ".sass-cache", "coverage", ".cache", ".DS_Store",
		"bootstrap/cache", "public/build", "/dist", "/build",
	}
}

// DefaultConfig returns a fresh default configuration with no paths set.
func DefaultConfig() Config {
	return Config{
		Format:              FormatMarkdown,
		SplitBytes:          Unbounded,
		Extensions:          NewExtensions(DefaultExtensions()...),
		ExcludePatterns:     DefaultExcludes(),
		MaxFileBytes:        DefaultMaxFileBytes,
		EmitStructure:       true,
		StructureMaxEntries: DefaultStructureMaxEntries,
	}
}
