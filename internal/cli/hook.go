package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgate/internal/config"
)

const (
	hookMarkerStart = "# >>> commitgate pre-commit hook >>>"
	hookMarkerEnd   = "# <<< commitgate pre-commit hook <<<"
	hookShebang     = "#!/bin/sh\n"
)

var hookOutputMode string

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Run commitgate before every git commit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if hookOutputMode != "" {
			if _, err := config.ParseOutputMode(hookOutputMode); err != nil {
				return err
			}
		}
		hookPath, err := getHookPath()
		if err != nil {
			return hookFailure(err)
		}
		if err := installHook(hookPath, generateHookScript(hookOutputMode)); err != nil {
			return hookFailure(err)
		}
		fmt.Fprintf(os.Stdout, "Installed commitgate pre-commit hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the commitgate section from the git pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			return hookFailure(err)
		}
		deleted, err := uninstallHook(hookPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Fprintln(os.Stdout, "No pre-commit hook found.")
		case err != nil:
			return hookFailure(err)
		case deleted:
			fmt.Fprintf(os.Stdout, "Removed pre-commit hook %s\n", hookPath)
		default:
			fmt.Fprintf(os.Stdout, "Removed commitgate section from %s\n", hookPath)
		}
		return nil
	},
}

func hookFailure(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitCode = ExitBlocked
	return nil
}

// getHookPath asks git where the pre-commit hook lives, so core.hooksPath
// is honored.
func getHookPath() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--git-path", "hooks/pre-commit").Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository (git rev-parse failed)")
	}
	return filepath.Clean(strings.TrimSpace(string(out))), nil
}

// installHook writes section into the hook at path, replacing a previous
// commitgate section and keeping everything else.
func installHook(path, section string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading hook file: %w", err)
	}

	content := hookShebang + section
	if len(existing) > 0 {
		content = replaceHookSection(string(existing), section)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating hooks directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return fmt.Errorf("writing hook file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(path, 0o755)
}

// uninstallHook strips the commitgate section. The file is deleted when
// nothing but a shebang would remain.
func uninstallHook(path string) (deleted bool, err error) {
	existing, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	content := removeHookSection(string(existing))
	switch strings.TrimSpace(content) {
	case "", "#!/bin/sh", "#!/bin/bash":
		if err := os.Remove(path); err != nil {
			return false, fmt.Errorf("removing hook file: %w", err)
		}
		return true, nil
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return false, fmt.Errorf("writing hook file: %w", err)
	}
	return false, nil
}

// generateHookScript returns the marked hook section. The gate prompts on
// the controlling terminal, so the hook needs no interactive stdin.
func generateHookScript(outputMode string) string {
	command := "commitgate"
	if outputMode != "" {
		command += " --output-mode " + outputMode
	}
	return strings.Join([]string{
		hookMarkerStart,
		command,
		"COMMITGATE_EXIT=$?",
		"if [ $COMMITGATE_EXIT -ne 0 ]; then",
		`  echo "commitgate: commit blocked"`,
		"  exit $COMMITGATE_EXIT",
		"fi",
		hookMarkerEnd,
	}, "\n") + "\n"
}

// sectionBounds returns the byte range of the marked section, or ok=false.
func sectionBounds(s string) (start, end int, ok bool) {
	start = strings.Index(s, hookMarkerStart)
	end = strings.Index(s, hookMarkerEnd)
	if start == -1 || end == -1 || end < start {
		return 0, 0, false
	}
	end += len(hookMarkerEnd)
	if end < len(s) && s[end] == '\n' {
		end++
	}
	return start, end, true
}

func replaceHookSection(existing, section string) string {
	start, end, ok := sectionBounds(existing)
	if !ok {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}
	return existing[:start] + section + existing[end:]
}

func removeHookSection(existing string) string {
	start, end, ok := sectionBounds(existing)
	if !ok {
		return existing
	}
	return existing[:start] + existing[end:]
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookInstallCmd.Flags().StringVar(&hookOutputMode, "output-mode", "", "Delivery mode used by the hook (console, file, web)")
}
