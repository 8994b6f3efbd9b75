package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/commitgate/internal/findings"
)

// TextWriter prints the report for a terminal.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *findings.Report) error {
	ew := &errWriter{w: w}

	if len(report.Files) == 0 {
		ew.println("✅ Code analysis complete, no issues found")
		return ew.err
	}

	ew.println("\n📋 AI code review feedback:")
	ew.println(strings.Repeat("=", 50))

	for i, f := range report.Files {
		ew.printf("\n%d. %s %s\n", i+1, statusIcon(f.Status), f.FullPath)
		ew.println(strings.Repeat("-", 30))
		ew.println(strings.TrimRight(f.Analysis, "\n"))
	}

	ew.printf("\n%s\n", strings.Repeat("=", 50))
	ew.printf("Files: %d | Passed: %d | Need attention: %d | Success rate: %d%%\n",
		report.Summary.Total, report.Summary.Passed, report.Summary.HasIssues, report.Summary.SuccessRate)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func statusIcon(status string) string {
	if status == "success" {
		return "✅"
	}
	return "⚠️"
}
