package output

import (
	"io"
	"strings"

	"github.com/dshills/commitgate/internal/findings"
)

// MarkdownWriter produces the report file written by file delivery.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *findings.Report) error {
	ew := &errWriter{w: w}

	ew.println("# AI Code Review Report\n")
	ew.printf("**Generated**: %s\n", report.Timestamp.Local().Format("2006-01-02 15:04:05"))
	if branch := configString(report, "branch"); branch != "" {
		if head := configString(report, "head"); head != "" {
			branch += " @ " + head
		}
		ew.printf("**Branch**: %s\n", branch)
	}
	ew.printf("**Files reviewed**: %d\n", report.Summary.Total)
	ew.printf("**Passed**: %d\n", report.Summary.Passed)
	ew.printf("**Need attention**: %d\n\n", report.Summary.HasIssues)

	if len(report.Files) == 0 {
		ew.println("## Results\n")
		ew.println("✅ **Code analysis complete, no issues found**\n")
	} else {
		ew.println("## Detailed Results\n")
		for i, f := range report.Files {
			ew.printf("### %d. %s %s\n\n", i+1, statusIcon(f.Status), f.FullPath)
			ew.printf("%s\n\n", strings.TrimRight(f.Analysis, "\n"))
			ew.println("---\n")
		}
	}

	ew.println("## Notes\n")
	ew.println("This report was generated automatically by commitgate to assist code review.")
	ew.println("Judge each suggestion against the actual context before acting on it.\n")
	ew.println("*Generated by*: commitgate")

	return ew.err
}

func configString(report *findings.Report, key string) string {
	s, _ := report.Config[key].(string)
	return s
}
