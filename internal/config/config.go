package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OutputMode selects how findings are delivered.
type OutputMode string

const (
	ModeConsole OutputMode = "console"
	ModeFile    OutputMode = "file"
	ModeWeb     OutputMode = "web"
)

// ParseOutputMode validates a mode name, case-insensitively.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeConsole:
		return ModeConsole, nil
	case ModeFile:
		return ModeFile, nil
	case ModeWeb:
		return ModeWeb, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want console, file or web)", s)
	}
}

// Recognized configuration keys. The same names are used in .env files,
// the process environment and the flag override map.
const (
	KeyAPIKey          = "API_KEY"
	KeyProvider        = "AI_PROVIDER"
	KeyBaseURL         = "AI_BASE_URL"
	KeyModel           = "AI_MODEL"
	KeyMaxTokens       = "AI_MAX_TOKENS"
	KeyTemperature     = "AI_TEMPERATURE"
	KeyOutputMode      = "AI_OUTPUT_MODE"
	KeyWebPort         = "AI_WEB_PORT"
	KeyAutoOpenBrowser = "AI_AUTO_OPEN_BROWSER"
	KeyVCSType         = "VCS_TYPE"
	KeySystemPrompt    = "AI_REVIEW_SYSTEM_PROMPT"
	KeyRedactSecrets   = "AI_REDACT_SECRETS"
	KeyCacheEnabled    = "AI_CACHE_ENABLED"
	KeyCacheDir        = "AI_CACHE_DIR"
	KeyCacheTTL        = "AI_CACHE_TTL"
	KeyVocabularyFile  = "AI_VOCABULARY_FILE"
	KeyDashboardDir    = "AI_WEB_DASHBOARD_DIR"
	KeyExclude         = "AI_EXCLUDE"
)

// Keys lists every recognized key in display order.
var Keys = []string{
	KeyAPIKey, KeyProvider, KeyBaseURL, KeyModel, KeyMaxTokens, KeyTemperature,
	KeyOutputMode, KeyWebPort, KeyAutoOpenBrowser, KeyVCSType, KeySystemPrompt,
	KeyRedactSecrets, KeyCacheEnabled, KeyCacheDir, KeyCacheTTL,
	KeyVocabularyFile, KeyDashboardDir, KeyExclude,
}

// Config is the resolved configuration for one run. It is built once by
// Load and not modified afterwards.
type Config struct {
	APIKey         string         `json:"-"`
	Provider       string         `json:"provider"`
	BaseURL        string         `json:"baseUrl,omitempty"`
	Model          string         `json:"model,omitempty"`
	MaxTokens      int            `json:"maxTokens"`
	Temperature    float64        `json:"temperature"`
	SystemPrompt   string         `json:"systemPrompt,omitempty"`
	VCSType        string         `json:"vcsType,omitempty"`
	Delivery       DeliveryConfig `json:"delivery"`
	RedactSecrets  bool           `json:"redactSecrets"`
	Cache          CacheConfig    `json:"cache"`
	VocabularyFile string         `json:"vocabularyFile,omitempty"`
	DashboardDir   string         `json:"dashboardDir,omitempty"`
	// Exclude holds glob patterns removed from review in addition to the
	// VCS defaults.
	Exclude []string `json:"exclude,omitempty"`
}

// DeliveryConfig controls the delivery channel.
type DeliveryConfig struct {
	OutputMode      OutputMode `json:"outputMode"`
	WebPort         int        `json:"webPort"`
	AutoOpenBrowser bool       `json:"autoOpenBrowser"`
}

// CacheConfig controls the review response cache.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// Default returns a Config with all built-in defaults applied.
func Default() Config {
	return Config{
		Provider:    "openai",
		MaxTokens:   1000,
		Temperature: 0.3,
		Delivery: DeliveryConfig{
			OutputMode:      ModeFile,
			WebPort:         3000,
			AutoOpenBrowser: true,
		},
		RedactSecrets: true,
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
	}
}

// Options controls where Load looks for configuration. Zero values are
// filled from the running process.
type Options struct {
	// Overrides come from CLI flags and win over every other source.
	Overrides map[string]string
	WorkDir   string
	HomeDir   string
	ExeDir    string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Result is the outcome of Load: the config plus the source layers that
// were consulted, highest precedence first.
type Result struct {
	Config Config
	Layers []Layer
}

// Loaded returns the file layers that existed and were read.
func (r Result) Loaded() []Layer {
	var out []Layer
	for _, l := range r.Layers {
		if l.Path != "" && l.Loaded {
			out = append(out, l)
		}
	}
	return out
}

// Load merges all sources into one Config.
func Load(opts Options) (Result, error) {
	opts = opts.withDefaults()

	layers, err := readLayers(opts)
	if err != nil {
		return Result{}, err
	}

	cfg := Default()
	if err := apply(&cfg, merge(layers)); err != nil {
		return Result{}, err
	}
	return Result{Config: cfg, Layers: layers}, nil
}

func (o Options) withDefaults() Options {
	if o.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			o.WorkDir = wd
		}
	}
	if o.HomeDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			o.HomeDir = home
		}
	}
	if o.ExeDir == "" {
		o.ExeDir = ExecutableDir()
	}
	if o.LookupEnv == nil {
		o.LookupEnv = os.LookupEnv
	}
	return o
}

// ExecutableDir returns the directory holding the running binary, with
// symlinks resolved. It returns "" when it cannot be determined.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

type mergedValue struct {
	value  string
	source string
}

// merge folds layers from lowest to highest precedence. Empty values never
// override a lower layer.
func merge(layers []Layer) map[string]mergedValue {
	out := make(map[string]mergedValue)
	for i := len(layers) - 1; i >= 0; i-- {
		for k, v := range layers[i].Values {
			if strings.TrimSpace(v) == "" {
				continue
			}
			out[k] = mergedValue{value: v, source: layers[i].Name}
		}
	}
	return out
}

func apply(cfg *Config, values map[string]mergedValue) error {
	for _, key := range Keys {
		mv, ok := values[key]
		if !ok {
			continue
		}
		if err := setField(cfg, key, strings.TrimSpace(mv.value)); err != nil {
			return fmt.Errorf("%s (from %s): %w", key, mv.source, err)
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if the key
// is unknown or the value does not parse.
func SetField(cfg *Config, key, value string) error {
	return setField(cfg, key, value)
}

func setField(cfg *Config, key, value string) error {
	switch key {
	case KeyAPIKey:
		cfg.APIKey = value
	case KeyProvider:
		p := strings.ToLower(value)
		switch p {
		case "openai", "anthropic", "gemini", "google", "ollama", "lmstudio":
			cfg.Provider = p
		default:
			return fmt.Errorf("unknown provider %q", value)
		}
	case KeyBaseURL:
		cfg.BaseURL = value
	case KeyModel:
		cfg.Model = value
	case KeyMaxTokens:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("must be a positive integer, got %q", value)
		}
		cfg.MaxTokens = n
	case KeyTemperature:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("must be a non-negative number, got %q", value)
		}
		cfg.Temperature = f
	case KeyOutputMode:
		m, err := ParseOutputMode(value)
		if err != nil {
			return err
		}
		cfg.Delivery.OutputMode = m
	case KeyWebPort:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("must be a port number, got %q", value)
		}
		cfg.Delivery.WebPort = n
	case KeyAutoOpenBrowser:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("must be a boolean, got %q", value)
		}
		cfg.Delivery.AutoOpenBrowser = b
	case KeyVCSType:
		v := strings.ToLower(value)
		if v != "git" && v != "svn" {
			return fmt.Errorf("unknown VCS type %q (want git or svn)", value)
		}
		cfg.VCSType = v
	case KeySystemPrompt:
		cfg.SystemPrompt = value
	case KeyRedactSecrets:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("must be a boolean, got %q", value)
		}
		cfg.RedactSecrets = b
	case KeyCacheEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("must be a boolean, got %q", value)
		}
		cfg.Cache.Enabled = b
	case KeyCacheDir:
		cfg.Cache.Dir = value
	case KeyCacheTTL:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("must be a non-negative integer, got %q", value)
		}
		cfg.Cache.TTLSeconds = n
	case KeyVocabularyFile:
		cfg.VocabularyFile = value
	case KeyDashboardDir:
		cfg.DashboardDir = value
	case KeyExclude:
		cfg.Exclude = splitComma(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// splitComma splits a comma-separated list, trimming space and dropping
// empty entries.
func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
