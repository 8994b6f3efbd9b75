package vcs

import (
	"path/filepath"
	"strings"
)

// Filter selects analyzable files. A file is kept only if its extension is
// allow-listed and none of its directories is ignored.
type Filter struct {
	Extensions []string
	// IgnoredDirs are matched against whole path segments.
	IgnoredDirs []string
	// Exclude holds extra glob patterns, from AI_EXCLUDE.
	Exclude []string
}

var commonExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".vue", ".py", ".java", ".go", ".php", ".rb"}

// GitFilter is the default filter for the git backend.
func GitFilter() Filter {
	return Filter{
		Extensions:   append([]string(nil), commonExtensions...),
		IgnoredDirs:  []string{"node_modules", "dist", "build", ".git", "coverage"},
	}
}

// SVNFilter is the default filter for the svn backend. It adds C-family
// sources and extra build directories.
func SVNFilter() Filter {
	return Filter{
		Extensions:   append(append([]string(nil), commonExtensions...), ".c", ".cpp", ".h", ".hpp"),
		IgnoredDirs:  []string{"node_modules", "dist", "build", ".svn", "coverage", "target", "bin", "obj"},
	}
}

// Relevant returns the subset of paths that pass the filter, in order.
func (f Filter) Relevant(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Match reports whether a single path passes the filter.
func (f Filter) Match(path string) bool {
	slashed := filepath.ToSlash(path)
	if !hasExtension(slashed, f.Extensions) {
		return false
	}
	if inIgnoredDir(slashed, f.IgnoredDirs) {
		return false
	}
	return !MatchesAny(slashed, f.Exclude)
}

func inIgnoredDir(path string, dirs []string) bool {
	segments := strings.Split(path, "/")
	for _, seg := range segments[:len(segments)-1] {
		for _, d := range dirs {
			if seg == strings.Trim(d, "/") {
				return true
			}
		}
	}
	return false
}

func hasExtension(path string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// MatchesAny returns true if the path matches any of the given glob patterns.
// A leading "**/" also matches against the base name.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean == pattern {
			continue
		}
		if matched, err := filepath.Match(clean, filepath.Base(path)); err == nil && matched {
			return true
		}
		if matched, err := filepath.Match(clean, path); err == nil && matched {
			return true
		}
	}
	return false
}
