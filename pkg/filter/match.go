package filter

import (
	"strings"

	"github.com/bmatcuk/doublestar"

	"dirdump/pkg/config"
)

// MatchPattern reports whether rel, a slash-separated path relative to the
// target directory, is excluded by pattern.
//
//   - a bare name matches any path segment equal to it
//   - a path fragment matches rel itself or any path below it; a leading
//     slash anchors a single name the same way ("/build" matches "build/x"
//     but not "src/build")
//   - a glob without a slash matches any single segment; a glob with a slash
//     matches rel or one of its ancestors
func MatchPattern(pattern, rel string) bool {
	if pattern == "" || rel == "" {
		return false
	}
	segments := strings.Split(rel, "/")

	if config.IsGlob(pattern) {
		if !strings.Contains(pattern, "/") {
			for _, seg := range segments {
				if ok, _ := doublestar.Match(pattern, seg); ok {
					return true
				}
			}
			return false
		}
		for i := range segments {
			if ok, _ := doublestar.Match(pattern, strings.Join(segments[:i+1], "/")); ok {
				return true
			}
		}
		return false
	}

	if !strings.Contains(pattern, "/") {
		for _, seg := range segments {
			if seg == pattern {
				return true
			}
		}
		return false
	}
	pattern = strings.TrimPrefix(pattern, "/")
	return rel == pattern || strings.HasPrefix(rel, pattern+"/")
}

// MatchAny reports whether any pattern excludes rel.
func MatchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if MatchPattern(p, rel) {
			return true
		}
	}
	return false
}
