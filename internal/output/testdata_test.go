package output

import (
	"time"

	"github.com/dshills/commitgate/internal/findings"
	"github.com/dshills/commitgate/internal/review"
)

func sampleReport() *findings.Report {
	rep := findings.Build([]review.Result{
		{Filename: "src/a.go", Analysis: "Possible security issue in query building.\n", HasIssues: true, Diff: "+q"},
		{Filename: "b.py", Analysis: "Looks good.", HasIssues: false},
	}, findings.Meta{Timestamp: time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)})
	return &rep
}

func emptyReport() *findings.Report {
	rep := findings.Build(nil, findings.Meta{Timestamp: time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)})
	return &rep
}
