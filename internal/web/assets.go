package web

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

//go:embed fallback
var fallbackFS embed.FS

func fallbackAssets() fs.FS {
	sub, err := fs.Sub(fallbackFS, "fallback")
	if err != nil {
		panic(err)
	}
	return sub
}

// BuildRunner runs a build command in dir.
type BuildRunner func(ctx context.Context, dir, name string, args ...string) error

// ExecBuildRunner runs the command with its output on stderr.
func ExecBuildRunner(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// DefaultDashboardDir is <executable dir>/web/public.
func DefaultDashboardDir(exeDir string) string {
	return filepath.Join(exeDir, "web", "public")
}

// ResolveAssets picks the dashboard to serve from dir.
//
// A dir containing index.html is served as is. Otherwise, if a sibling
// frontend/ directory with a package.json exists, it is built once with npm
// (installing dependencies first when node_modules is missing). With neither,
// the built-in page is used. A failed build wraps ErrStartup.
func ResolveAssets(ctx context.Context, dir string, run BuildRunner, logger *log.Logger) (fs.FS, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if run == nil {
		run = ExecBuildRunner
	}
	if dir == "" {
		return fallbackAssets(), nil
	}
	if exists(filepath.Join(dir, "index.html")) {
		return os.DirFS(dir), nil
	}

	frontend := filepath.Join(filepath.Dir(dir), "frontend")
	if !exists(filepath.Join(frontend, "package.json")) {
		logger.Printf("[web] no dashboard build in %s, using built-in page", dir)
		return fallbackAssets(), nil
	}

	logger.Printf("[web] first run: building dashboard in %s (this can take a while)", frontend)
	if !exists(filepath.Join(frontend, "node_modules")) {
		logger.Printf("[web] installing dashboard dependencies")
		if err := run(ctx, frontend, "npm", "install"); err != nil {
			return nil, fmt.Errorf("%w: npm install: %v", ErrStartup, err)
		}
	}
	if err := run(ctx, frontend, "npm", "run", "build"); err != nil {
		return nil, fmt.Errorf("%w: npm run build: %v", ErrStartup, err)
	}
	if !exists(filepath.Join(dir, "index.html")) {
		return nil, fmt.Errorf("%w: build produced no %s", ErrStartup, filepath.Join(dir, "index.html"))
	}
	logger.Printf("[web] dashboard build complete")
	return os.DirFS(dir), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
