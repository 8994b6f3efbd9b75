package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/commitgate/internal/config"
	"github.com/dshills/commitgate/internal/findings"
	"github.com/dshills/commitgate/internal/output"
	"github.com/dshills/commitgate/internal/review"
	"github.com/dshills/commitgate/internal/web"
)

type fakeServer struct {
	startErr  error
	report    *findings.Report
	started   bool
	closed    bool
	decisions chan web.Decision
}

func newFakeServer(startErr error) *fakeServer {
	return &fakeServer{startErr: startErr, decisions: make(chan web.Decision, 1)}
}

func (f *fakeServer) SetReport(r *findings.Report)       { f.report = r }
func (f *fakeServer) URL() string                        { return "http://localhost:3000" }
func (f *fakeServer) Decisions() <-chan web.Decision     { return f.decisions }
func (f *fakeServer) Shutdown(ctx context.Context) error { f.closed = true; return nil }
func (f *fakeServer) Close() error                       { f.closed = true; return nil }
func (f *fakeServer) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)

func reportOf(results ...review.Result) *findings.Report {
	rep := findings.Build(results, findings.Meta{Timestamp: fixedNow})
	return &rep
}

func withIssue() *findings.Report {
	return reportOf(
		review.Result{Filename: "a.js", Analysis: "security issue here", HasIssues: true},
		review.Result{Filename: "b.js", Analysis: "fine"},
	)
}

func dispatcher(t *testing.T, mode config.OutputMode, srv *fakeServer) (*Dispatcher, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	d := &Dispatcher{
		Config: config.DeliveryConfig{OutputMode: mode, WebPort: 3000},
		Dir:    t.TempDir(),
		Stdout: &out,
		Now:    func() time.Time { return fixedNow },
	}
	if srv != nil {
		d.NewWebServer = func(context.Context) (WebServer, error) { return srv, nil }
	}
	return d, &out
}

func reportFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "AI_CODE_REVIEW-*.md"))
	require.NoError(t, err)
	return matches
}

func TestConsole(t *testing.T) {
	d, out := dispatcher(t, config.ModeConsole, nil)
	o := d.Deliver(context.Background(), withIssue())

	assert.Equal(t, config.ModeConsole, o.Mode)
	assert.True(t, o.HasIssues)
	assert.False(t, o.Pending)
	assert.False(t, o.Fallback())
	assert.Contains(t, out.String(), "a.js")
	assert.Empty(t, reportFiles(t, d.Dir))
}

func TestConsole_Empty(t *testing.T) {
	d, out := dispatcher(t, config.ModeConsole, nil)
	o := d.Deliver(context.Background(), reportOf())

	assert.False(t, o.HasIssues)
	assert.Contains(t, out.String(), "no issues found")
}

func TestFile(t *testing.T) {
	d, out := dispatcher(t, config.ModeFile, nil)
	o := d.Deliver(context.Background(), withIssue())

	assert.Equal(t, config.ModeFile, o.Mode)
	assert.True(t, o.HasIssues)
	assert.Equal(t, filepath.Join(d.Dir, output.Filename("markdown", fixedNow)), o.ReportPath)
	assert.FileExists(t, o.ReportPath)
	assert.Contains(t, out.String(), o.ReportPath)
}

func TestFile_EmptyBehavesLikeConsole(t *testing.T) {
	d, out := dispatcher(t, config.ModeFile, nil)
	o := d.Deliver(context.Background(), reportOf())

	assert.Equal(t, config.ModeConsole, o.Mode)
	assert.Empty(t, o.ReportPath)
	assert.Empty(t, reportFiles(t, d.Dir))
	assert.Contains(t, out.String(), "no issues found")
}

func TestFile_WriteFailureFallsBackToConsole(t *testing.T) {
	d, out := dispatcher(t, config.ModeFile, nil)
	d.Dir = filepath.Join(d.Dir, "missing")

	o := d.Deliver(context.Background(), withIssue())
	assert.Equal(t, config.ModeFile, o.Requested)
	assert.Equal(t, config.ModeConsole, o.Mode)
	assert.True(t, o.Fallback())
	assert.True(t, o.HasIssues)
	assert.Contains(t, out.String(), "security issue here")
}

func TestWeb(t *testing.T) {
	srv := newFakeServer(nil)
	d, out := dispatcher(t, config.ModeWeb, srv)
	rep := withIssue()

	o := d.Deliver(context.Background(), rep)
	assert.Equal(t, config.ModeWeb, o.Mode)
	assert.True(t, o.Pending)
	assert.True(t, srv.started)
	assert.Same(t, rep, srv.report)
	assert.Same(t, srv, o.Server)
	assert.Contains(t, out.String(), "http://localhost:3000")
	assert.Empty(t, reportFiles(t, d.Dir))
}

func TestWeb_StartFailureFallsBackToFile(t *testing.T) {
	srv := newFakeServer(errors.New("address already in use"))
	d, _ := dispatcher(t, config.ModeWeb, srv)
	rep := withIssue()

	o := d.Deliver(context.Background(), rep)
	assert.Equal(t, config.ModeWeb, o.Requested)
	assert.Equal(t, config.ModeFile, o.Mode)
	assert.False(t, o.Pending)
	assert.Nil(t, o.Server)
	assert.True(t, srv.closed)

	data, err := os.ReadFile(o.ReportPath)
	require.NoError(t, err)
	want, err := output.Render(rep, "markdown")
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

func TestWeb_FactoryFailureFallsBackToFile(t *testing.T) {
	d, _ := dispatcher(t, config.ModeWeb, nil)
	d.NewWebServer = func(context.Context) (WebServer, error) { return nil, web.ErrStartup }

	o := d.Deliver(context.Background(), withIssue())
	assert.Equal(t, config.ModeFile, o.Mode)
	assert.FileExists(t, o.ReportPath)
}

func TestWeb_RealPortInUse(t *testing.T) {
	blocker := web.New(web.Options{})
	require.NoError(t, blocker.Start(context.Background()))
	defer blocker.Close()

	port := portOf(t, blocker.URL())
	d, _ := dispatcher(t, config.ModeWeb, nil)
	d.Config.WebPort = port
	d.Config.AutoOpenBrowser = false

	o := d.Deliver(context.Background(), withIssue())
	assert.Equal(t, config.ModeFile, o.Mode)
	assert.FileExists(t, o.ReportPath)
}

func TestWeb_EmptyBehavesLikeConsole(t *testing.T) {
	srv := newFakeServer(nil)
	d, _ := dispatcher(t, config.ModeWeb, srv)

	o := d.Deliver(context.Background(), reportOf())
	assert.Equal(t, config.ModeConsole, o.Mode)
	assert.False(t, o.Pending)
	assert.False(t, srv.started)
}

func TestAwait(t *testing.T) {
	srv := newFakeServer(nil)
	o := Outcome{Mode: config.ModeWeb, Pending: true, Server: srv}

	srv.decisions <- web.DecisionContinue
	ok, err := o.Await(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	srv.decisions <- web.DecisionAbort
	ok, err = o.Await(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAwait_Cancelled(t *testing.T) {
	o := Outcome{Server: newFakeServer(nil)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := o.Await(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwait_NoServer(t *testing.T) {
	_, err := Outcome{}.Await(context.Background())
	assert.Error(t, err)
}

func portOf(t *testing.T, url string) int {
	t.Helper()
	var port int
	_, err := fmt.Sscanf(url, "http://localhost:%d", &port)
	require.NoError(t, err)
	return port
}
