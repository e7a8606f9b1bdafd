package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// IgnoreFileName is looked up in the project root when no ignore file is given.
const IgnoreFileName = ".dirdumpignore"

// LoadIgnoreFile reads exclude patterns from path, one per line. A missing
// file yields no patterns and no error.
func LoadIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ignore file %s: %w", path, err)
	}
	return ParseIgnoreLines(strings.Split(string(content), "\n")...), nil
}

// ParseIgnoreLines extracts exclude patterns from ignore-file lines. Blank
// lines, comments and negations are skipped; a trailing slash is dropped
// because patterns apply to directories and files alike.
func ParseIgnoreLines(lines ...string) []string {
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}
		if strings.HasPrefix(trimmed, `\#`) || strings.HasPrefix(trimmed, `\!`) {
			trimmed = trimmed[1:]
		}
		trimmed = strings.TrimSuffix(trimmed, "/")
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
