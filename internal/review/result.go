package review

import (
	"errors"
	"strings"
)

// Result is the analysis of one file. It is not modified after creation.
type Result struct {
	Filename  string `json:"filename"`
	Analysis  string `json:"analysis"`
	HasIssues bool   `json:"hasIssues"`
	Diff      string `json:"diff"`
	// Cached is set when the analysis came from the response cache.
	Cached bool `json:"cached,omitempty"`
}

// IssueKeywords mark an analysis as having issues when any of them occurs,
// case-insensitively. This is a lexical heuristic over freeform text.
var IssueKeywords = []string{"error", "issue", "bug", "security", "performance", "suggest fixing", "needs attention"}

// DetectIssues reports whether text contains any of keywords.
func DetectIssues(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// InitError means the review service could not be set up at all, as opposed
// to a single file failing.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return "review service unavailable: " + e.Err.Error()
}

func (e *InitError) Unwrap() error { return e.Err }

// IsInitError reports whether err is, or wraps, an InitError.
func IsInitError(err error) bool {
	var ie *InitError
	return errors.As(err, &ie)
}
