package findings

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/commitgate/internal/review"
)

// Report is the structured view of one run's analysis results.
type Report struct {
	Summary   Summary        `json:"summary"`
	Files     []File         `json:"files"`
	Timestamp time.Time      `json:"timestamp"`
	Stats     Stats          `json:"stats"`
	Config    map[string]any `json:"config,omitempty"`
}

// Summary counts files. Passed + HasIssues == Total always holds.
type Summary struct {
	Total       int `json:"total"`
	Passed      int `json:"passed"`
	HasIssues   int `json:"hasIssues"`
	SuccessRate int `json:"successRate"`
}

// File is an analysis result enriched for display.
type File struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	FullPath    string       `json:"fullPath"`
	Directory   string       `json:"directory"`
	Extension   string       `json:"extension"`
	Status      string       `json:"status"`
	Analysis    string       `json:"analysis"`
	HasIssues   bool         `json:"hasIssues"`
	Diff        string       `json:"diff"`
	Icon        string       `json:"icon"`
	Issues      []Issue      `json:"issues"`
	Suggestions []Suggestion `json:"suggestions"`
	Severity    string       `json:"severity"`
	Size        string       `json:"size"`
}

// Issue is a line of analysis text that names a problem.
type Issue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// Suggestion is a line of analysis text that proposes a change.
type Suggestion struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// LanguageStats counts files per extension.
type LanguageStats struct {
	Total  int `json:"total"`
	Issues int `json:"issues"`
}

// Stats aggregates across files.
type Stats struct {
	TotalIssues           int                      `json:"totalIssues"`
	SecurityIssues        int                      `json:"securityIssues"`
	PerformanceIssues     int                      `json:"performanceIssues"`
	MaintainabilityIssues int                      `json:"maintainabilityIssues"`
	ByLanguage            map[string]LanguageStats `json:"byLanguage"`
	BySeverity            map[string]int           `json:"bySeverity"`
}

// Meta is run information carried into the report.
type Meta struct {
	Timestamp time.Time
	Config    map[string]any
}

// Aggregator builds reports with a given vocabulary.
type Aggregator struct {
	Vocab Vocabulary
}

// Build uses the default vocabulary.
func Build(results []review.Result, meta Meta) Report {
	return Aggregator{Vocab: DefaultVocabulary()}.Build(results, meta)
}

// Build converts results into a Report. Files keep the order of results.
func (a Aggregator) Build(results []review.Result, meta Meta) Report {
	ts := meta.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	files := make([]File, 0, len(results))
	for _, r := range results {
		files = append(files, a.processFile(r))
	}
	return Report{
		Summary:   Summarize(results),
		Files:     files,
		Timestamp: ts,
		Stats:     a.stats(results),
		Config:    meta.Config,
	}
}

// Summarize counts results. An empty set is a vacuous pass.
func Summarize(results []review.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.HasIssues {
			s.HasIssues++
		}
	}
	s.Passed = s.Total - s.HasIssues
	s.SuccessRate = 100
	if s.Total > 0 {
		s.SuccessRate = int(float64(s.Passed)/float64(s.Total)*100 + 0.5)
	}
	return s
}

// FileID derives a stable identifier from the filename alone.
func FileID(filename string) string {
	sum := sha256.Sum256([]byte(filename))
	return hex.EncodeToString(sum[:4])
}

func (a Aggregator) processFile(r review.Result) File {
	dir := filepath.Dir(r.Filename)
	if dir == "." {
		dir = ""
	}
	ext := filepath.Ext(r.Filename)
	status := "success"
	if r.HasIssues {
		status = "warning"
	}
	return File{
		ID:          FileID(r.Filename),
		Filename:    filepath.Base(r.Filename),
		FullPath:    r.Filename,
		Directory:   dir,
		Extension:   ext,
		Status:      status,
		Analysis:    r.Analysis,
		HasIssues:   r.HasIssues,
		Diff:        r.Diff,
		Icon:        Icon(ext),
		Issues:      a.ExtractIssues(r.Analysis),
		Suggestions: a.ExtractSuggestions(r.Analysis),
		Severity:    a.Vocab.FileSeverityOf(r.Analysis),
		Size:        sizeOf(r.Analysis),
	}
}

// ExtractIssues returns one Issue per line that mentions a problem keyword.
func (a Aggregator) ExtractIssues(analysis string) []Issue {
	issues := []Issue{}
	for _, line := range strings.Split(analysis, "\n") {
		if !containsAny(strings.ToLower(line), a.Vocab.ProblemKeywords) {
			continue
		}
		issues = append(issues, Issue{
			Type:        a.Vocab.IssueType(line),
			Description: strings.TrimSpace(line),
			Severity:    a.Vocab.IssueSeverityOf(line),
		})
	}
	return issues
}

// ExtractSuggestions returns one Suggestion per line that proposes a change.
func (a Aggregator) ExtractSuggestions(analysis string) []Suggestion {
	suggestions := []Suggestion{}
	for _, line := range strings.Split(analysis, "\n") {
		if !containsAny(strings.ToLower(line), a.Vocab.SuggestionKeywords) {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Type:        "improvement",
			Description: strings.TrimSpace(line),
			Priority:    a.Vocab.SuggestionPriorityOf(line),
		})
	}
	return suggestions
}

func (a Aggregator) stats(results []review.Result) Stats {
	s := Stats{
		ByLanguage: map[string]LanguageStats{},
		BySeverity: map[string]int{"high": 0, "medium": 0, "low": 0},
	}
	for _, r := range results {
		ext := filepath.Ext(r.Filename)
		lang := s.ByLanguage[ext]
		lang.Total++
		if r.HasIssues {
			lang.Issues++
			s.TotalIssues++
			if mentions(r.Analysis, a.Vocab.IssueTypes, "security") {
				s.SecurityIssues++
			}
			if mentions(r.Analysis, a.Vocab.IssueTypes, "performance") {
				s.PerformanceIssues++
			}
			if mentions(r.Analysis, a.Vocab.IssueTypes, "maintainability") {
				s.MaintainabilityIssues++
			}
			s.BySeverity[a.Vocab.FileSeverityOf(r.Analysis)]++
		}
		s.ByLanguage[ext] = lang
	}
	return s
}

// sizeOf buckets an analysis by length.
func sizeOf(analysis string) string {
	switch n := len([]rune(analysis)); {
	case n > 500:
		return "large"
	case n > 200:
		return "medium"
	default:
		return "small"
	}
}

var icons = map[string]string{
	".js":   "fab fa-js-square",
	".jsx":  "fab fa-react",
	".ts":   "fab fa-js-square",
	".tsx":  "fab fa-react",
	".vue":  "fab fa-vuejs",
	".css":  "fab fa-css3-alt",
	".scss": "fab fa-sass",
	".html": "fab fa-html5",
	".json": "fas fa-file-code",
	".yaml": "fas fa-file-code",
	".yml":  "fas fa-file-code",
	".md":   "fab fa-markdown",
	".py":   "fab fa-python",
	".java": "fab fa-java",
	".go":   "fas fa-code",
	".php":  "fab fa-php",
	".rb":   "fas fa-gem",
	".rs":   "fas fa-code",
	".c":    "fas fa-file-code",
	".cpp":  "fas fa-file-code",
	".h":    "fas fa-file-code",
	".sql":  "fas fa-database",
	".sh":   "fas fa-terminal",
}

// Icon returns the dashboard icon class for an extension.
func Icon(ext string) string {
	if icon, ok := icons[strings.ToLower(ext)]; ok {
		return icon
	}
	return "fas fa-file-code"
}
