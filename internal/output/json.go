package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/commitgate/internal/findings"
)

// JSONWriter produces the report file when file delivery asks for json. The
// document is the findings.Report as the web UI receives it.
type JSONWriter struct{}

// Write encodes report indented, followed by a newline.
func (j *JSONWriter) Write(w io.Writer, report *findings.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}
