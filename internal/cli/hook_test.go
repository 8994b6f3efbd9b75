package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateHookScript(t *testing.T) {
	script := generateHookScript("")

	if !strings.Contains(script, hookMarkerStart) {
		t.Error("Script missing start marker")
	}
	if !strings.Contains(script, hookMarkerEnd) {
		t.Error("Script missing end marker")
	}
	if !strings.Contains(script, "\ncommitgate\n") {
		t.Error("Script missing commitgate command")
	}
	if !strings.Contains(script, "COMMITGATE_EXIT=$?") {
		t.Error("Script missing exit code capture")
	}
	if !strings.Contains(script, "exit $COMMITGATE_EXIT") {
		t.Error("Script does not propagate a non-zero exit")
	}
}

func TestGenerateHookScript_OutputMode(t *testing.T) {
	script := generateHookScript("web")

	if !strings.Contains(script, "commitgate --output-mode web\n") {
		t.Errorf("Script doesn't pass output mode:\n%s", script)
	}
}

func TestReplaceHookSection_NoExisting(t *testing.T) {
	existing := "#!/bin/sh\nsome-other-hook\n"
	section := generateHookScript("")

	result := replaceHookSection(existing, section)

	if !strings.HasPrefix(result, "#!/bin/sh\nsome-other-hook\n") {
		t.Error("Existing content should be preserved")
	}
	if !strings.Contains(result, hookMarkerStart) {
		t.Error("New section should be appended")
	}
}

func TestReplaceHookSection_ExistingSection(t *testing.T) {
	old := generateHookScript("")
	existing := "#!/bin/sh\nbefore\n" + old + "after\n"
	section := generateHookScript("console")

	result := replaceHookSection(existing, section)

	if strings.Count(result, hookMarkerStart) != 1 {
		t.Errorf("Expected exactly one section, got:\n%s", result)
	}
	if !strings.Contains(result, "--output-mode console") {
		t.Error("Section should be replaced with the new one")
	}
	if !strings.Contains(result, "before\n") || !strings.HasSuffix(result, "after\n") {
		t.Errorf("Surrounding content should be preserved:\n%s", result)
	}
}

func TestRemoveHookSection(t *testing.T) {
	existing := "#!/bin/sh\nbefore\n" + generateHookScript("") + "after\n"

	result := removeHookSection(existing)

	if strings.Contains(result, hookMarkerStart) || strings.Contains(result, "commitgate") {
		t.Errorf("Section should be removed:\n%s", result)
	}
	if result != "#!/bin/sh\nbefore\nafter\n" {
		t.Errorf("Unexpected result %q", result)
	}
}

func TestRemoveHookSection_NoSection(t *testing.T) {
	existing := "#!/bin/sh\nsome-hook\n"
	if got := removeHookSection(existing); got != existing {
		t.Errorf("Content without a section should be unchanged, got %q", got)
	}
}

func TestReplaceHookSection_NoTrailingNewline(t *testing.T) {
	existing := "#!/bin/sh\nsome-hook"
	result := replaceHookSection(existing, generateHookScript(""))

	if !strings.Contains(result, "some-hook\n"+hookMarkerStart) {
		t.Errorf("Section should start on its own line:\n%s", result)
	}
}

func TestInstallHook_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks", "pre-commit")

	if err := installHook(path, generateHookScript("")); err != nil {
		t.Fatalf("installHook: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), hookShebang+hookMarkerStart) {
		t.Errorf("unexpected hook content:\n%s", data)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("hook is not executable: %v", info.Mode())
	}
}

func TestInstallHook_KeepsOtherHooksAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pre-commit")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nmake lint\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := installHook(path, generateHookScript("file")); err != nil {
			t.Fatalf("installHook #%d: %v", i+1, err)
		}
	}
	data, _ := os.ReadFile(path)
	if strings.Count(string(data), hookMarkerStart) != 1 {
		t.Errorf("expected one section after reinstall:\n%s", data)
	}
	if !strings.Contains(string(data), "make lint") {
		t.Error("existing hook content lost")
	}
}

func TestUninstallHook(t *testing.T) {
	dir := t.TempDir()

	only := filepath.Join(dir, "only")
	if err := installHook(only, generateHookScript("")); err != nil {
		t.Fatal(err)
	}
	deleted, err := uninstallHook(only)
	if err != nil || !deleted {
		t.Fatalf("uninstallHook = %v, %v; want deleted", deleted, err)
	}
	if _, err := os.Stat(only); !os.IsNotExist(err) {
		t.Error("hook file should be gone")
	}

	shared := filepath.Join(dir, "shared")
	if err := os.WriteFile(shared, []byte("#!/bin/sh\nmake lint\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := installHook(shared, generateHookScript("")); err != nil {
		t.Fatal(err)
	}
	deleted, err = uninstallHook(shared)
	if err != nil || deleted {
		t.Fatalf("uninstallHook = %v, %v; want section removed only", deleted, err)
	}
	data, _ := os.ReadFile(shared)
	if string(data) != "#!/bin/sh\nmake lint\n" {
		t.Errorf("unexpected content %q", data)
	}

	if _, err := uninstallHook(filepath.Join(dir, "missing")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing hook error = %v, want fs.ErrNotExist", err)
	}
}
