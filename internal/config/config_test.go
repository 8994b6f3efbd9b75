package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func noEnv(string) (string, bool) { return "", false }

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type dirs struct {
	work, home, exe string
}

func newDirs(t *testing.T) dirs {
	root := t.TempDir()
	return dirs{
		work: filepath.Join(root, "work"),
		home: filepath.Join(root, "home"),
		exe:  filepath.Join(root, "exe"),
	}
}

func (d dirs) options(overrides map[string]string, env func(string) (string, bool)) Options {
	return Options{
		Overrides: overrides,
		WorkDir:   d.work,
		HomeDir:   d.home,
		ExeDir:    d.exe,
		LookupEnv: env,
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != "openai" {
		t.Errorf("Default provider = %q, want %q", cfg.Provider, "openai")
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("Default maxTokens = %d, want 1000", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Default temperature = %v, want 0.3", cfg.Temperature)
	}
	if cfg.Delivery.OutputMode != ModeFile {
		t.Errorf("Default output mode = %q, want %q", cfg.Delivery.OutputMode, ModeFile)
	}
	if cfg.Delivery.WebPort != 3000 {
		t.Errorf("Default web port = %d, want 3000", cfg.Delivery.WebPort)
	}
	if !cfg.Delivery.AutoOpenBrowser {
		t.Error("Default autoOpenBrowser should be true")
	}
	if !cfg.RedactSecrets {
		t.Error("Default redactSecrets should be true")
	}
	if cfg.VCSType != "" {
		t.Errorf("Default VCS type = %q, want auto-detect", cfg.VCSType)
	}
}

func TestLoad_NoSources(t *testing.T) {
	d := newDirs(t)
	res, err := Load(d.options(nil, noEnv))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(res.Config, Default()) {
		t.Errorf("Load with no sources = %+v, want defaults", res.Config)
	}
	if len(res.Loaded()) != 0 {
		t.Errorf("Loaded() = %d layers, want 0", len(res.Loaded()))
	}
}

func TestLoad_Precedence(t *testing.T) {
	d := newDirs(t)
	writeFile(t, filepath.Join(d.exe, ".env"), "AI_MODEL=package\nAI_WEB_PORT=4000\nAI_MAX_TOKENS=11\n")
	writeFile(t, filepath.Join(d.exe, GlobalFileName), "AI_MODEL=install\nAI_MAX_TOKENS=22\n")
	writeFile(t, filepath.Join(d.home, GlobalFileName), "AI_MODEL=user\nAPI_KEY=user-key\n")
	writeFile(t, filepath.Join(d.work, ".env"), "AI_MODEL=project\n")

	res, err := Load(d.options(nil, noEnv))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	cfg := res.Config
	if cfg.Model != "project" {
		t.Errorf("Model = %q, want project", cfg.Model)
	}
	if cfg.APIKey != "user-key" {
		t.Errorf("APIKey = %q, want user-key", cfg.APIKey)
	}
	if cfg.MaxTokens != 22 {
		t.Errorf("MaxTokens = %d, want 22 from install layer", cfg.MaxTokens)
	}
	if cfg.Delivery.WebPort != 4000 {
		t.Errorf("WebPort = %d, want 4000 from package layer", cfg.Delivery.WebPort)
	}
	if got := len(res.Loaded()); got != 4 {
		t.Errorf("Loaded() = %d layers, want 4", got)
	}
}

func TestLoad_EnvBeatsFilesAndFlagsBeatEnv(t *testing.T) {
	d := newDirs(t)
	writeFile(t, filepath.Join(d.work, ".env"), "AI_OUTPUT_MODE=console\nAI_MODEL=file-model\n")

	env := envFrom(map[string]string{
		KeyOutputMode: "file",
		KeyModel:      "env-model",
	})
	res, err := Load(d.options(map[string]string{KeyOutputMode: "web"}, env))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if res.Config.Delivery.OutputMode != ModeWeb {
		t.Errorf("OutputMode = %q, want web from flags", res.Config.Delivery.OutputMode)
	}
	if res.Config.Model != "env-model" {
		t.Errorf("Model = %q, want env-model", res.Config.Model)
	}
}

func TestLoad_EmptyValueDoesNotOverride(t *testing.T) {
	d := newDirs(t)
	writeFile(t, filepath.Join(d.home, GlobalFileName), "API_KEY=global\n")
	writeFile(t, filepath.Join(d.work, ".env"), "API_KEY=\n")

	res, err := Load(d.options(nil, noEnv))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if res.Config.APIKey != "global" {
		t.Errorf("APIKey = %q, want global", res.Config.APIKey)
	}
}

func TestLoad_DoesNotMutateEnvironment(t *testing.T) {
	d := newDirs(t)
	writeFile(t, filepath.Join(d.work, ".env"), "AI_VOCABULARY_FILE=/tmp/vocab.yaml\n")
	t.Setenv(KeyVocabularyFile, "")
	os.Unsetenv(KeyVocabularyFile)

	if _, err := Load(d.options(nil, os.LookupEnv)); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, ok := os.LookupEnv(KeyVocabularyFile); ok {
		t.Error("Load leaked a file value into the process environment")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{KeyOutputMode, "pdf"},
		{KeyWebPort, "70000"},
		{KeyWebPort, "abc"},
		{KeyMaxTokens, "0"},
		{KeyTemperature, "warm"},
		{KeyAutoOpenBrowser, "maybe"},
		{KeyVCSType, "hg"},
		{KeyProvider, "nope"},
		{KeyCacheTTL, "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			d := newDirs(t)
			_, err := Load(d.options(map[string]string{tt.key: tt.value}, noEnv))
			if err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name key %s", err, tt.key)
			}
			if !strings.Contains(err.Error(), LayerFlags) {
				t.Errorf("error %q does not name source %s", err, LayerFlags)
			}
		})
	}
}

func TestParseOutputMode(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputMode
		wantErr bool
	}{
		{"console", ModeConsole, false},
		{"FILE", ModeFile, false},
		{" web ", ModeWeb, false},
		{"html", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, KeyAutoOpenBrowser, "false"); err != nil {
		t.Fatalf("SetField error: %v", err)
	}
	if cfg.Delivery.AutoOpenBrowser {
		t.Error("AutoOpenBrowser should be false")
	}
	if err := SetField(&cfg, "NOT_A_KEY", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoad_ExcludeList(t *testing.T) {
	d := newDirs(t)
	writeFile(t, filepath.Join(d.work, ".env"), "AI_EXCLUDE= **/*_gen.go, ,docs/** \n")

	res, err := Load(d.options(nil, noEnv))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"**/*_gen.go", "docs/**"}
	if strings.Join(res.Config.Exclude, "|") != strings.Join(want, "|") {
		t.Errorf("Exclude = %q, want %q", res.Config.Exclude, want)
	}
}

func TestResolvePaths(t *testing.T) {
	p := ResolvePaths("/w", "/h", "/e")
	if p.Project != filepath.Join("/w", ".env") {
		t.Errorf("Project = %q", p.Project)
	}
	if p.User != filepath.Join("/h", GlobalFileName) {
		t.Errorf("User = %q", p.User)
	}
	if p.Install != filepath.Join("/e", GlobalFileName) {
		t.Errorf("Install = %q", p.Install)
	}
	if p.Package != filepath.Join("/e", ".env") {
		t.Errorf("Package = %q", p.Package)
	}

	empty := ResolvePaths("", "", "")
	if empty != (Paths{}) {
		t.Errorf("ResolvePaths with empty dirs = %+v, want zero", empty)
	}
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", GlobalFileName)
	if err := WriteTemplate(path, "the home directory"); err != nil {
		t.Fatalf("WriteTemplate error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "API_KEY=") {
		t.Error("template missing API_KEY")
	}
	if !strings.Contains(string(data), "the home directory") {
		t.Error("template missing location")
	}

	err = WriteTemplate(path, "again")
	if !errors.Is(err, ErrExists) {
		t.Errorf("second WriteTemplate error = %v, want ErrExists", err)
	}
}

func TestWriteTemplate_IsLoadable(t *testing.T) {
	d := newDirs(t)
	if err := WriteTemplate(filepath.Join(d.home, GlobalFileName), "home"); err != nil {
		t.Fatal(err)
	}
	res, err := Load(d.options(nil, noEnv))
	if err != nil {
		t.Fatalf("Load of template error: %v", err)
	}
	if res.Config.Model != "deepseek-chat" {
		t.Errorf("Model = %q, want deepseek-chat", res.Config.Model)
	}
	if res.Config.VCSType != "git" {
		t.Errorf("VCSType = %q, want git", res.Config.VCSType)
	}
}

func TestWriteHelp(t *testing.T) {
	var buf bytes.Buffer
	WriteHelp(&buf, ResolvePaths("/w", "/h", "/e"), "/w")
	out := buf.String()
	for _, want := range []string{GlobalFileName, "init-config", KeyAPIKey, filepath.Join("/h", GlobalFileName)} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}
