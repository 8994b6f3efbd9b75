package vcs

import (
	"context"
	"log"
	"strings"
)

// Git reviews the staged changes of a git repository.
type Git struct {
	dir    string
	run    Runner
	logger *log.Logger
	filter Filter
}

// NewGit creates a git backend with the default filter.
func NewGit(opts Options) *Git {
	opts = opts.withDefaults()
	f := GitFilter()
	f.Exclude = opts.Exclude
	return &Git{dir: opts.Dir, run: opts.Run, logger: opts.Logger, filter: f}
}

// WithFilter replaces the relevance filter.
func (g *Git) WithFilter(f Filter) *Git {
	g.filter = f
	return g
}

func (g *Git) Name() string { return "git" }

// ListChangedFiles returns the staged paths.
func (g *Git) ListChangedFiles(ctx context.Context) []string {
	out, err := g.git(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		g.logger.Printf("[vcs] listing staged files: %v", err)
		return []string{}
	}
	return splitLines(out)
}

// Diff returns the staged diff of one path.
func (g *Git) Diff(ctx context.Context, path string) string {
	out, err := g.git(ctx, "diff", "--cached", "--", path)
	if err != nil {
		g.logger.Printf("[vcs] diff for %s: %v", path, err)
		return ""
	}
	return out
}

// Content returns the working-tree content of path.
func (g *Git) Content(path string) string {
	return readContent(g.dir, path, g.logger)
}

func (g *Git) FilterRelevant(paths []string) []string {
	return g.filter.Relevant(paths)
}

// Meta reads the branch and HEAD commit. Missing values are left empty,
// for example before the first commit.
func (g *Git) Meta(ctx context.Context) RepoMeta {
	m := RepoMeta{VCS: "git"}
	if out, err := g.git(ctx, "rev-parse", "--show-toplevel"); err == nil {
		m.Root = strings.TrimSpace(out)
	}
	if out, err := g.git(ctx, "rev-parse", "--short", "HEAD"); err == nil {
		m.Head = strings.TrimSpace(out)
	}
	if out, err := g.git(ctx, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		m.Branch = strings.TrimSpace(out)
	}
	return m
}

func (g *Git) git(ctx context.Context, args ...string) (string, error) {
	return g.run(ctx, g.dir, "git", args...)
}
