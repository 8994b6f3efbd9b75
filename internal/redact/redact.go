package redact

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const placeholder = "[REDACTED]"

type rule struct {
	kind string
	re   *regexp.Regexp
}

// rules are regex heuristics for common secret shapes. Order matters:
// provider-specific keys run before the generic "sk-" rule.
var rules = []rule{
	{"api-key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`)},
	{"aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret-key", regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`)},
	{"password", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`)},
	{"bearer", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"private-key", regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"anthropic-key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai-key", regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`)},
	{"connection-string", regexp.MustCompile(`(?i)\b(postgres|postgresql|mysql|mongodb(\+srv)?|redis|amqp)://[^\s:/@]+:[^\s@]+@[^\s"']+`)},
	{"hex-secret", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// DefaultPaths are files whose whole content is withheld from the reviewer.
var DefaultPaths = []string{"**/.env", "**/.env.*", "**/*.pem", "**/*.key", "**/*secrets*"}

// Report counts what a Redactor removed, by secret kind.
type Report map[string]int

// Total returns the number of redactions.
func (r Report) Total() int {
	n := 0
	for _, c := range r {
		n += c
	}
	return n
}

// Kinds returns the redacted kinds in sorted order.
func (r Report) Kinds() []string {
	kinds := make([]string, 0, len(r))
	for k := range r {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Redactor scrubs secrets from text before it leaves the machine. A nil
// *Redactor passes text through unchanged.
type Redactor struct {
	paths []string
}

// New creates a Redactor. Files matching any of paths are withheld entirely.
func New(paths []string) *Redactor {
	return &Redactor{paths: append([]string(nil), paths...)}
}

// Text replaces detected secrets with [REDACTED].
func (r *Redactor) Text(text string) (string, Report) {
	report := Report{}
	if r == nil || text == "" {
		return text, report
	}
	out := text
	for _, ru := range rules {
		out = ru.re.ReplaceAllStringFunc(out, func(string) string {
			report[ru.kind]++
			return placeholder
		})
	}
	return out, report
}

// File redacts content belonging to path. Content of policy-matched paths is
// replaced wholesale.
func (r *Redactor) File(path, content string) (string, Report) {
	if r == nil {
		return content, Report{}
	}
	if content != "" && MatchesPath(path, r.paths) {
		return placeholder + " (file content withheld by path policy)\n", Report{"path-policy": 1}
	}
	return r.Text(content)
}

// MatchesPath reports whether path matches any of the glob patterns. A
// leading "**/" also matches against the base name.
func MatchesPath(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
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
	}
	return false
}

// Merge adds the counts of other into r.
func (r Report) Merge(other Report) {
	for k, v := range other {
		r[k] += v
	}
}
