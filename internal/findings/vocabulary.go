package findings

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/commitgate/internal/review"
)

//go:embed vocabulary.yaml
var builtinVocabulary []byte

// Tier is a named keyword group.
type Tier struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Vocabulary is the keyword table behind every text classification in this
// package. All matching is case-insensitive substring search.
type Vocabulary struct {
	// IssueKeywords decide whether a whole analysis has issues.
	IssueKeywords []string `yaml:"issue_keywords"`
	// ProblemKeywords turn a line into an Issue.
	ProblemKeywords []string `yaml:"problem_keywords"`
	// SuggestionKeywords turn a line into a Suggestion.
	SuggestionKeywords []string `yaml:"suggestion_keywords"`

	IssueTypes       []Tier `yaml:"issue_types"`
	DefaultIssueType string `yaml:"default_issue_type"`

	IssueSeverity        []Tier `yaml:"issue_severity"`
	DefaultIssueSeverity string `yaml:"default_issue_severity"`

	SuggestionPriority        []Tier `yaml:"suggestion_priority"`
	DefaultSuggestionPriority string `yaml:"default_suggestion_priority"`

	FileSeverity        []Tier `yaml:"file_severity"`
	DefaultFileSeverity string `yaml:"default_file_severity"`
}

// DefaultVocabulary returns the built-in table. Its issue keywords are the
// pipeline's review.IssueKeywords, so both classifiers agree until a
// vocabulary file overrides them.
func DefaultVocabulary() Vocabulary {
	v := Vocabulary{IssueKeywords: slices.Clone(review.IssueKeywords)}
	if err := yaml.Unmarshal(builtinVocabulary, &v); err != nil {
		panic(fmt.Sprintf("findings: builtin vocabulary: %v", err))
	}
	return v
}

// LoadVocabulary reads a YAML override. Keys missing from the file keep their
// built-in values. An empty path returns the defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	if path == "" {
		return v, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("findings.LoadVocabulary: %w", err)
	}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return DefaultVocabulary(), fmt.Errorf("findings.LoadVocabulary: parse %q: %w", path, err)
	}
	return v, nil
}

// HasIssues reports whether analysis contains any issue keyword.
func (v Vocabulary) HasIssues(analysis string) bool {
	return containsAny(strings.ToLower(analysis), v.IssueKeywords)
}

// IssueType classifies a line. Earlier tiers take priority.
func (v Vocabulary) IssueType(line string) string {
	return classify(line, v.IssueTypes, v.DefaultIssueType)
}

// IssueSeverityOf grades a single issue line.
func (v Vocabulary) IssueSeverityOf(line string) string {
	return classify(line, v.IssueSeverity, v.DefaultIssueSeverity)
}

// SuggestionPriorityOf grades a single suggestion line.
func (v Vocabulary) SuggestionPriorityOf(line string) string {
	return classify(line, v.SuggestionPriority, v.DefaultSuggestionPriority)
}

// FileSeverityOf grades a whole analysis.
func (v Vocabulary) FileSeverityOf(analysis string) string {
	return classify(analysis, v.FileSeverity, v.DefaultFileSeverity)
}

// mentions reports whether text matches the named tier of tiers.
func mentions(text string, tiers []Tier, name string) bool {
	lower := strings.ToLower(text)
	for _, t := range tiers {
		if t.Name == name {
			return containsAny(lower, t.Keywords)
		}
	}
	return false
}

func classify(text string, tiers []Tier, fallback string) string {
	lower := strings.ToLower(text)
	for _, t := range tiers {
		if containsAny(lower, t.Keywords) {
			return t.Name
		}
	}
	return fallback
}

// containsAny expects lower to be lowercased already.
func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
