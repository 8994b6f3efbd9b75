package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrExists is returned by WriteTemplate when the target file already exists.
var ErrExists = errors.New("config file already exists")

const templateBody = `# commitgate global configuration
# This file lives in %s and applies to every project.
# A .env file in a project root takes precedence over it.

# ===========================================
# Required: API key
# ===========================================

API_KEY=your-api-key

# ===========================================
# AI service (optional)
# ===========================================

# AI_PROVIDER=openai
AI_BASE_URL=https://api.deepseek.com/v1
AI_MODEL=deepseek-chat
# AI_MAX_TOKENS=1000
# AI_TEMPERATURE=0.3

# Output mode (optional)
# file: write a Markdown report (default)
# console: print to the terminal
# web: serve an interactive dashboard
AI_OUTPUT_MODE=file
# AI_WEB_PORT=3000
# AI_AUTO_OPEN_BROWSER=true

# Version control system (optional): git or svn
VCS_TYPE=git

# Extra files to skip, comma-separated globs (optional)
# AI_EXCLUDE=**/*_gen.go,docs/**

# Custom review prompt (optional)
# AI_REVIEW_SYSTEM_PROMPT=You are an expert code reviewer. Focus on code quality, security, performance and best practices.
`

// Template returns the starter configuration text for the given location.
func Template(location string) string {
	return fmt.Sprintf(templateBody, location)
}

// WriteTemplate creates a starter configuration file at path. It refuses to
// overwrite an existing file.
func WriteTemplate(path, location string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("creating config file: %w", err)
	}
	if _, err := io.WriteString(f, Template(location)); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing config file: %w", err)
	}
	return f.Close()
}

// WriteHelp prints the configuration lookup order and file locations.
func WriteHelp(w io.Writer, paths Paths, workDir string) {
	var b strings.Builder
	b.WriteString("\ncommitgate configuration\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	b.WriteString("\nLookup order (highest first):\n")
	b.WriteString("  1. command-line flags\n")
	b.WriteString("  2. process environment\n")
	b.WriteString("  3. .env in the project root\n")
	fmt.Fprintf(&b, "  4. ~/%s (user global config)\n", GlobalFileName)
	fmt.Fprintf(&b, "  5. %s next to the executable (installation global config)\n", GlobalFileName)
	b.WriteString("  6. .env next to the executable (package default config)\n")

	b.WriteString("\nRecommended setup:\n")
	b.WriteString("  - put the API key and shared settings in the user global config\n")
	b.WriteString("  - override per project with a .env file in the project root\n")

	b.WriteString("\nPaths:\n")
	if paths.User != "" {
		fmt.Fprintf(&b, "  user global config:         %s\n", paths.User)
	}
	if paths.Install != "" {
		fmt.Fprintf(&b, "  installation global config: %s\n", paths.Install)
	}
	if workDir != "" {
		fmt.Fprintf(&b, "  project root:               %s\n", workDir)
	}

	b.WriteString("\nKeys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %s\n", k)
	}

	b.WriteString("\nQuick start:\n")
	b.WriteString("  1. commitgate init-config        create the user global config\n")
	b.WriteString("  2. commitgate init-node-config   create the installation global config\n")
	b.WriteString("  3. edit the file and set API_KEY\n")
	b.WriteString("  4. commitgate hook install       run the review before every git commit\n")
	_, _ = io.WriteString(w, b.String())
}
