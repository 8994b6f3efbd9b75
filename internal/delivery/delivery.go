package delivery

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dshills/commitgate/internal/config"
	"github.com/dshills/commitgate/internal/findings"
	"github.com/dshills/commitgate/internal/output"
	"github.com/dshills/commitgate/internal/web"
)

// WebServer is the dashboard as the dispatcher drives it.
type WebServer interface {
	SetReport(r *findings.Report)
	Start(ctx context.Context) error
	URL() string
	Decisions() <-chan web.Decision
	Shutdown(ctx context.Context) error
	Close() error
}

// Outcome describes a finished delivery.
type Outcome struct {
	// Requested is the configured mode, Mode the one that delivered.
	Requested config.OutputMode
	Mode      config.OutputMode
	HasIssues bool
	// Pending means the dashboard owns the commit decision; see Await.
	Pending    bool
	ReportPath string
	Server     WebServer
}

// Fallback reports whether delivery degraded from the requested mode.
func (o Outcome) Fallback() bool {
	return o.Mode != o.Requested
}

// Await blocks until the dashboard posts a decision or ctx ends. It returns
// true when the commit should continue.
func (o Outcome) Await(ctx context.Context) (bool, error) {
	if o.Server == nil {
		return false, fmt.Errorf("delivery: no dashboard to wait on")
	}
	select {
	case d := <-o.Server.Decisions():
		return d == web.DecisionContinue, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Dispatcher delivers a report through the configured channel, degrading
// web to file and file to console on failure.
type Dispatcher struct {
	Config config.DeliveryConfig
	// Dir receives report files. Defaults to the working directory.
	Dir    string
	Stdout io.Writer
	Logger *log.Logger
	// NewWebServer builds the dashboard. Defaults to a built-in page server.
	NewWebServer func(ctx context.Context) (WebServer, error)
	Now          func() time.Time
}

// Deliver presents report. Console delivery cannot fail, so Deliver always
// returns an Outcome.
func (d *Dispatcher) Deliver(ctx context.Context, report *findings.Report) Outcome {
	requested := d.Config.OutputMode
	if requested == "" {
		requested = config.ModeConsole
	}
	hasIssues := report.Summary.HasIssues > 0

	var o Outcome
	switch requested {
	case config.ModeWeb:
		o = d.deliverWeb(ctx, report)
	case config.ModeFile:
		o = d.deliverFile(report)
	default:
		o = d.deliverConsole(report)
	}
	o.Requested = requested
	o.HasIssues = hasIssues
	return o
}

func (d *Dispatcher) deliverConsole(report *findings.Report) Outcome {
	if err := (&output.TextWriter{}).Write(d.stdout(), report); err != nil {
		d.logf("[delivery] console write: %v", err)
	}
	return Outcome{Mode: config.ModeConsole}
}

func (d *Dispatcher) deliverFile(report *findings.Report) Outcome {
	if len(report.Files) == 0 {
		return d.deliverConsole(report)
	}

	path, err := output.WriteReportFile(report, "markdown", d.dir(), d.now())
	if err != nil {
		d.logf("[delivery] file delivery failed: %v; falling back to console", err)
		fmt.Fprintf(d.stdout(), "⚠️  Could not write the report file (%v), printing to console instead\n", err)
		return d.deliverConsole(report)
	}

	fmt.Fprintf(d.stdout(), "📄 Review report written to %s\n", path)
	fmt.Fprintf(d.stdout(), "   %d files reviewed, %d passed, %d need attention\n",
		report.Summary.Total, report.Summary.Passed, report.Summary.HasIssues)
	return Outcome{Mode: config.ModeFile, ReportPath: path}
}

func (d *Dispatcher) deliverWeb(ctx context.Context, report *findings.Report) Outcome {
	if len(report.Files) == 0 {
		return d.deliverConsole(report)
	}

	srv, err := d.startWeb(ctx, report)
	if err != nil {
		d.logf("[delivery] web delivery failed: %v; falling back to file", err)
		fmt.Fprintf(d.stdout(), "⚠️  Web dashboard unavailable (%v), writing a report file instead\n", err)
		return d.deliverFile(report)
	}

	fmt.Fprintf(d.stdout(), "\n🌐 Review dashboard: %s\n", srv.URL())
	fmt.Fprintf(d.stdout(), "   Continue or abort the commit from the dashboard, or press Ctrl+C to abort.\n")
	return Outcome{Mode: config.ModeWeb, Pending: true, Server: srv}
}

func (d *Dispatcher) startWeb(ctx context.Context, report *findings.Report) (WebServer, error) {
	factory := d.NewWebServer
	if factory == nil {
		factory = func(context.Context) (WebServer, error) {
			return web.New(web.Options{
				Port:     d.Config.WebPort,
				AutoOpen: d.Config.AutoOpenBrowser,
				Logger:   d.Logger,
			}), nil
		}
	}
	srv, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	srv.SetReport(report)
	if err := srv.Start(ctx); err != nil {
		_ = srv.Close()
		return nil, err
	}
	return srv, nil
}

func (d *Dispatcher) stdout() io.Writer {
	if d.Stdout == nil {
		return os.Stdout
	}
	return d.Stdout
}

func (d *Dispatcher) dir() string {
	if d.Dir != "" {
		return d.Dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (d *Dispatcher) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}
