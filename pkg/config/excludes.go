package config

import (
	"path/filepath"
	"strings"
)

// NormalizeExcludes rewrites user exclude tokens into the form the filter
// matches against. Bare names are kept. Path-like tokens are resolved against
// projectRoot and then targetDir and made relative to targetDir when they land
// inside it, with a leading slash when one segment remains; otherwise they
// are kept with surrounding slashes trimmed. Glob tokens only get their
// separators normalized. Order is preserved and duplicates are dropped.
func NormalizeExcludes(tokens []string, projectRoot, targetDir string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	for _, raw := range tokens {
		t := strings.ReplaceAll(strings.TrimSpace(raw), `\`, "/")
		if t == "" {
			continue
		}
		switch {
		case IsGlob(t):
			add(strings.TrimPrefix(strings.TrimRight(t, "/"), "./"))
		case strings.Contains(t, "/"):
			if rel, ok := relativeToTarget(t, projectRoot, targetDir); ok {
				add(anchor(rel))
				continue
			}
			add(strings.Trim(t, "/"))
		default:
			add(t)
		}
	}
	return out
}

// anchor marks a target-relative path of one segment so that it is not
// matched as a bare name at any depth.
func anchor(rel string) string {
	if rel == "" || strings.Contains(rel, "/") {
		return rel
	}
	return "/" + rel
}

// relativeToTarget resolves a path-like token and reports its slash form
// relative to targetDir. The target itself is reported as ok with an empty
// result so that it is dropped rather than kept verbatim.
func relativeToTarget(token, projectRoot, targetDir string) (string, bool) {
	p := filepath.FromSlash(token)
	var candidates []string
	if filepath.IsAbs(p) || strings.HasPrefix(token, "/") {
		candidates = []string{filepath.Clean(p)}
	} else {
		candidates = []string{filepath.Join(projectRoot, p), filepath.Join(targetDir, p)}
	}
	for _, abs := range candidates {
		rel, err := filepath.Rel(targetDir, abs)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		if rel == "." {
			return "", true
		}
		return rel, true
	}
	return "", false
}

// IsGlob reports whether pattern uses glob metacharacters.
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}
