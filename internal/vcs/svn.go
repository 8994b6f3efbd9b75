package vcs

import (
	"context"
	"log"
	"regexp"
	"strings"
)

// statusLine matches "M      path" style lines; only M, A and D are kept.
var statusLine = regexp.MustCompile(`^[MAD]\s+(.+)$`)

// SVN reviews every modified file of an svn working copy.
type SVN struct {
	dir    string
	run    Runner
	logger *log.Logger
	filter Filter
}

// NewSVN creates an svn backend with the default filter.
func NewSVN(opts Options) *SVN {
	opts = opts.withDefaults()
	f := SVNFilter()
	f.Exclude = opts.Exclude
	return &SVN{dir: opts.Dir, run: opts.Run, logger: opts.Logger, filter: f}
}

// WithFilter replaces the relevance filter.
func (s *SVN) WithFilter(f Filter) *SVN {
	s.filter = f
	return s
}

func (s *SVN) Name() string { return "svn" }

// ListChangedFiles parses `svn status`.
func (s *SVN) ListChangedFiles(ctx context.Context) []string {
	out, err := s.run(ctx, s.dir, "svn", "status")
	if err != nil {
		s.logger.Printf("[vcs] svn status: %v", err)
		return []string{}
	}
	return ParseStatus(out)
}

// ParseStatus extracts paths from svn status output, dropping lines with
// unrecognized status codes.
func ParseStatus(out string) []string {
	files := []string{}
	for _, line := range splitLines(out) {
		m := statusLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if p := strings.TrimSpace(m[1]); p != "" {
			files = append(files, p)
		}
	}
	return files
}

func (s *SVN) Diff(ctx context.Context, path string) string {
	out, err := s.run(ctx, s.dir, "svn", "diff", path)
	if err != nil {
		s.logger.Printf("[vcs] svn diff for %s: %v", path, err)
		return ""
	}
	return out
}

func (s *SVN) Content(path string) string {
	return readContent(s.dir, path, s.logger)
}

func (s *SVN) FilterRelevant(paths []string) []string {
	return s.filter.Relevant(paths)
}

// Meta reads the working copy revision and its repository-relative URL.
func (s *SVN) Meta(ctx context.Context) RepoMeta {
	m := RepoMeta{VCS: "svn"}
	if out, err := s.run(ctx, s.dir, "svn", "info", "--show-item", "wc-root"); err == nil {
		m.Root = strings.TrimSpace(out)
	}
	if out, err := s.run(ctx, s.dir, "svn", "info", "--show-item", "revision"); err == nil {
		m.Head = strings.TrimSpace(out)
	}
	if out, err := s.run(ctx, s.dir, "svn", "info", "--show-item", "relative-url"); err == nil {
		m.Branch = strings.TrimSpace(out)
	}
	return m
}
