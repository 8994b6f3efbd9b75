package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/commitgate/internal/findings"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *findings.Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text", "console":
		return &TextWriter{}, nil
	case "markdown", "md", "":
		return &MarkdownWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Render writes report in format to a string.
func Render(report *findings.Report, format string) (string, error) {
	writer, err := GetWriter(format)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := writer.Write(&b, report); err != nil {
		return "", err
	}
	return b.String(), nil
}

// filenameLayout is the local timestamp in report filenames.
const filenameLayout = "2006-01-02_15-04-05"

// Filename returns the report filename for format at t, e.g.
// AI_CODE_REVIEW-2026-10-18_14-03-05.md.
func Filename(format string, t time.Time) string {
	ext := "md"
	if format == "json" {
		ext = "json"
	}
	return fmt.Sprintf("AI_CODE_REVIEW-%s.%s", t.Local().Format(filenameLayout), ext)
}

// maxNameAttempts bounds the numbered variants tried for one timestamp.
const maxNameAttempts = 100

// WriteReportFile writes the report into dir under a timestamped name and
// returns the path written. An existing report is never overwritten: a
// second report in the same second gets a numbered name. A failed write
// leaves no file behind.
func WriteReportFile(report *findings.Report, format, dir string, now time.Time) (string, error) {
	writer, err := GetWriter(format)
	if err != nil {
		return "", err
	}
	return writeReportFile(writer, report, filepath.Join(dir, Filename(format, now)))
}

func writeReportFile(writer Writer, report *findings.Report, path string) (string, error) {
	f, path, err := createUnique(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	if err := writer.Write(f, report); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing report file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing report file: %w", err)
	}
	return path, nil
}

// createUnique creates path, or path with -2, -3 ... before the extension
// when it already exists.
func createUnique(path string) (*os.File, string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	candidate := path
	for n := 2; ; n++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) || n > maxNameAttempts {
			return nil, "", err
		}
		candidate = fmt.Sprintf("%s-%d%s", base, n, ext)
	}
}
