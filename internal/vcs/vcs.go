package vcs

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Backend is the uniform surface over a version control system.
//
// Operations never return errors: a failing command is logged and reported
// as an empty result, so a VCS quirk degrades to "nothing to review".
type Backend interface {
	Name() string
	ListChangedFiles(ctx context.Context) []string
	Diff(ctx context.Context, path string) string
	Content(path string) string
	FilterRelevant(paths []string) []string
}

// Runner executes a VCS command in dir and returns its stdout.
type Runner func(ctx context.Context, dir, name string, args ...string) (string, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// RepoMeta identifies what is being committed to, for report headers.
type RepoMeta struct {
	VCS    string `json:"vcs"`
	Root   string `json:"root,omitempty"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// MetaOf returns repository metadata when the backend can describe itself.
func MetaOf(ctx context.Context, b Backend) RepoMeta {
	if m, ok := b.(interface {
		Meta(context.Context) RepoMeta
	}); ok {
		return m.Meta(ctx)
	}
	return RepoMeta{VCS: b.Name()}
}

// Options configures a backend.
type Options struct {
	// Dir is the working copy root. Defaults to the current directory.
	Dir    string
	Run    Runner
	Logger *log.Logger
	// Exclude adds glob patterns to the backend's default filter.
	Exclude []string
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		if wd, err := os.Getwd(); err == nil {
			o.Dir = wd
		}
	}
	if o.Run == nil {
		o.Run = ExecRunner
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	return o
}

// Detect probes dir for a git control directory, then an svn one. It
// returns "" when neither exists.
func Detect(dir string) string {
	if exists(filepath.Join(dir, ".git")) {
		return "git"
	}
	if exists(filepath.Join(dir, ".svn")) {
		return "svn"
	}
	return ""
}

// Select returns the backend for an explicit type, or auto-detects one.
// When no control directory is found it warns and falls back to git.
func Select(explicit string, opts Options) (Backend, error) {
	opts = opts.withDefaults()

	kind := strings.ToLower(strings.TrimSpace(explicit))
	if kind == "" {
		kind = Detect(opts.Dir)
		if kind == "" {
			opts.Logger.Printf("[vcs] warning: no version control directory found in %s, defaulting to git", opts.Dir)
			kind = "git"
		}
	}

	switch kind {
	case "git":
		return NewGit(opts), nil
	case "svn":
		return NewSVN(opts), nil
	default:
		return nil, fmt.Errorf("unsupported VCS type %q (want git or svn)", explicit)
	}
}

// Describe returns a one-line summary of what the backend reviews.
func Describe(b Backend) string {
	if b.Name() == "svn" {
		return "SVN mode: reviewing all modified working-copy files (M/A/D)"
	}
	return "Git mode: reviewing staged files (after git add)"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readContent reads a working-copy file. Missing or unreadable files yield "".
func readContent(dir, path string, logger *log.Logger) string {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Printf("[vcs] reading %s: %v", path, err)
		}
		return ""
	}
	return string(data)
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
