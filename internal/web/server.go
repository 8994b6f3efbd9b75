package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/browser"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/dshills/commitgate/internal/findings"
)

// Version is reported by /api/config.
var Version = "dev"

// ErrStartup wraps every failure that prevents the dashboard from serving.
var ErrStartup = errors.New("web dashboard failed to start")

// Decision is the commit decision made in the dashboard.
type Decision string

const (
	DecisionContinue Decision = "continue"
	DecisionAbort    Decision = "abort"
)

// Options configures a Server.
type Options struct {
	Port     int
	AutoOpen bool
	// Assets is the dashboard to serve. Nil serves the built-in page.
	Assets fs.FS
	Logger *log.Logger
	// OpenBrowser defaults to browser.OpenURL.
	OpenBrowser func(url string) error
}

// Server serves the findings report and the dashboard on localhost.
type Server struct {
	port        int
	autoOpen    bool
	assets      fs.FS
	logger      *log.Logger
	openBrowser func(string) error

	mu      sync.RWMutex
	report  *findings.Report
	running bool

	exports   *lru.Cache[string, exportResult]
	events    *hub
	decisions chan Decision

	httpServer *http.Server
	listener   net.Listener
	stopOnce   sync.Once
}

// New returns a Server. It does not listen until Start is called.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	assets := opts.Assets
	if assets == nil {
		assets = fallbackAssets()
	}
	open := opts.OpenBrowser
	if open == nil {
		open = browser.OpenURL
	}
	exports, _ := lru.New[string, exportResult](32)

	return &Server{
		port:        opts.Port,
		autoOpen:    opts.AutoOpen,
		assets:      assets,
		logger:      logger,
		openBrowser: open,
		exports:     exports,
		events:      newHub(logger),
		decisions:   make(chan Decision, 1),
	}
}

// SetReport replaces the served report and pushes it to connected dashboards.
func (s *Server) SetReport(r *findings.Report) {
	s.mu.Lock()
	s.report = r
	s.mu.Unlock()
	s.exports.Purge()
	s.events.broadcast(event{Type: "snapshot", Data: r})
}

// Report returns the served report, or nil.
func (s *Server) Report() *findings.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Decisions delivers the first commit decision made in the dashboard.
func (s *Server) Decisions() <-chan Decision {
	return s.decisions
}

// URL is the dashboard address.
func (s *Server) URL() string {
	port := s.port
	if s.listener != nil {
		port = s.listener.Addr().(*net.TCPAddr).Port
	}
	return fmt.Sprintf("http://localhost:%d", port)
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Start binds the port and serves in the background. Errors wrap ErrStartup.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("[web] server error: %v", err)
		}
	}()

	url := s.URL()
	s.logger.Printf("[web] dashboard listening on %s", url)
	if s.autoOpen {
		if err := s.openBrowser(url); err != nil {
			s.logger.Printf("[web] could not open browser: %v", err)
		}
	}
	return nil
}

// Shutdown notifies dashboards and stops the server. Safe to call more
// than once and before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		s.events.broadcast(event{Type: "status", Status: "stopped"})
		s.events.close()
		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}
	})
	return err
}

// Close shuts down with a short deadline.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

func (s *Server) decide(d Decision) bool {
	select {
	case s.decisions <- d:
		return true
	default:
		return false
	}
}
