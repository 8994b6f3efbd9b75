package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/commitgate/internal/confirm"
	"github.com/dshills/commitgate/internal/config"
	"github.com/dshills/commitgate/internal/delivery"
	"github.com/dshills/commitgate/internal/findings"
	"github.com/dshills/commitgate/internal/redact"
	"github.com/dshills/commitgate/internal/review"
	"github.com/dshills/commitgate/internal/vcs"
	"github.com/dshills/commitgate/internal/web"
)

// Prompts shown on the controlling terminal.
const (
	questionIssues = "\n❓ Suggestions were found, continue commit? (y/N):"
	questionClean  = "\n❓ Review complete, continue commit? (y/N):"
	questionSkip   = "\n⚠️  AI service unavailable, skip review and continue commit? (y/N):"
)

type analyzer interface {
	ChangedFiles(ctx context.Context) (all, relevant []string)
	Analyze(ctx context.Context, paths []string) []review.Result
	Redactions() redact.Report
	Repository(ctx context.Context) vcs.RepoMeta
}

type asker interface {
	Ask(ctx context.Context, question string) (bool, error)
}

type deliverer interface {
	Deliver(ctx context.Context, report *findings.Report) delivery.Outcome
}

// gate runs one review of the pending commit and decides its exit code.
type gate struct {
	cfg    config.Config
	stdout io.Writer
	logger *log.Logger

	newAnalyzer func(ctx context.Context) (analyzer, error)
	asker       asker
	deliverer   deliverer
	// register hands long-lived resources to the exit controller.
	register func(name string, c io.Closer)
	vocab    findings.Vocabulary
	now      func() time.Time
}

func runGate(cmd *cobra.Command, args []string) error {
	logger := newLogger(os.Stderr, flagDebug)
	ctx, stop := controller.NotifyContext(cmd.Context())
	defer stop()

	tty := confirm.New()

	res, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		exitCode = skipPrompt(ctx, os.Stdout, tty)
		return nil
	}
	cfg := res.Config
	if flagDebug {
		printDebug(logger, res)
	}

	vocab, err := findings.LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		logger.Printf("[findings] warning: %v, using built-in vocabulary", err)
	}

	g := &gate{
		cfg:    cfg,
		stdout: os.Stdout,
		logger: logger,
		newAnalyzer: func(ctx context.Context) (analyzer, error) {
			backend, err := vcs.Select(cfg.VCSType, vcs.Options{Logger: logger, Exclude: cfg.Exclude})
			if err != nil {
				return nil, err
			}
			fmt.Fprintln(os.Stdout, "🔍 "+vcs.Describe(backend))
			p, err := review.New(ctx, cfg, backend, logger)
			if err != nil {
				return nil, err
			}
			p.Classify = vocab.HasIssues
			p.OnProgress = printProgress(os.Stdout)
			return p, nil
		},
		asker: tty,
		deliverer: &delivery.Dispatcher{
			Config:       cfg.Delivery,
			Stdout:       os.Stdout,
			Logger:       logger,
			NewWebServer: webFactory(cfg, logger),
		},
		register: controller.Register,
		vocab:    vocab,
	}
	exitCode = g.run(ctx)
	return nil
}

// run never panics: any unexpected failure is treated like an unavailable
// review service.
func (g *gate) run(ctx context.Context) (code int) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Printf("[gate] unexpected failure: %v", rec)
			code = skipPrompt(ctx, g.stdout, g.asker)
		}
	}()

	fmt.Fprintln(g.stdout, "🚀 Starting AI code review...")

	a, err := g.newAnalyzer(ctx)
	if err != nil {
		fmt.Fprintf(g.stdout, "❌ Failed to initialize AI review: %v\n", err)
		return skipPrompt(ctx, g.stdout, g.asker)
	}

	all, relevant := a.ChangedFiles(ctx)
	if len(all) == 0 {
		fmt.Fprintln(g.stdout, "ℹ️  No code changes detected")
		return ExitContinue
	}
	if len(relevant) == 0 {
		fmt.Fprintln(g.stdout, "ℹ️  No files to review after filtering")
		return ExitContinue
	}
	fmt.Fprintf(g.stdout, "📁 Analyzing files: %s\n", strings.Join(relevant, ", "))

	results := a.Analyze(ctx, relevant)
	if ctx.Err() != nil {
		fmt.Fprintln(g.stdout, "\n⏹️ Review interrupted, commit cancelled")
		return ExitBlocked
	}
	if r := a.Redactions(); r.Total() > 0 {
		fmt.Fprintf(g.stdout, "🔒 Redacted %d secret(s) before sending: %s\n", r.Total(), strings.Join(r.Kinds(), ", "))
	}
	if len(results) == 0 {
		fmt.Fprintln(g.stdout, "✅ Code analysis complete, no issues found")
		return ExitContinue
	}

	report := findings.Aggregator{Vocab: g.vocab}.Build(results, findings.Meta{
		Timestamp: g.timestamp(),
		Config:    reportMeta(g.cfg, a.Repository(ctx)),
	})

	out := g.deliverer.Deliver(ctx, &report)
	if out.Pending {
		return g.awaitDashboard(ctx, out)
	}

	question := questionClean
	if out.HasIssues {
		question = questionIssues
	}
	return g.confirm(ctx, question)
}

func (g *gate) awaitDashboard(ctx context.Context, out delivery.Outcome) int {
	if g.register != nil {
		g.register("web dashboard", out.Server)
	}
	ok, err := out.Await(ctx)
	if err != nil {
		fmt.Fprintln(g.stdout, "\n⏹️ Commit cancelled")
		return ExitBlocked
	}
	if !ok {
		fmt.Fprintln(g.stdout, "⏹️ Commit cancelled from the dashboard")
		return ExitBlocked
	}
	fmt.Fprintln(g.stdout, "✅ Code review passed, continuing commit...")
	return ExitContinue
}

func (g *gate) confirm(ctx context.Context, question string) int {
	ok, err := g.asker.Ask(ctx, question)
	switch {
	case errors.Is(err, confirm.ErrNoTerminal):
		g.logger.Printf("[confirm] warning: %v, continuing commit", err)
		return ExitContinue
	case err != nil:
		fmt.Fprintln(g.stdout, "\n⏹️ Commit cancelled")
		return ExitBlocked
	case !ok:
		fmt.Fprintln(g.stdout, "⏹️ Commit cancelled")
		return ExitBlocked
	}
	fmt.Fprintln(g.stdout, "✅ Code review passed, continuing commit...")
	return ExitContinue
}

func (g *gate) timestamp() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}

// skipPrompt offers to commit without a review.
func skipPrompt(ctx context.Context, w io.Writer, a asker) int {
	ok, err := a.Ask(ctx, questionSkip)
	switch {
	case errors.Is(err, confirm.ErrNoTerminal):
		fmt.Fprintln(w, "⚠️  No terminal available, continuing commit without review")
		return ExitContinue
	case err != nil || !ok:
		fmt.Fprintln(w, "⏹️ Commit cancelled")
		return ExitBlocked
	}
	fmt.Fprintln(w, "⏭️  Skipping AI review, continuing commit...")
	return ExitContinue
}

// reportMeta is the run information carried in the report's config block.
func reportMeta(cfg config.Config, repo vcs.RepoMeta) map[string]any {
	m := map[string]any{
		"outputMode":      string(cfg.Delivery.OutputMode),
		"webPort":         cfg.Delivery.WebPort,
		"autoOpenBrowser": cfg.Delivery.AutoOpenBrowser,
		"vcs":             repo.VCS,
	}
	if repo.Branch != "" {
		m["branch"] = repo.Branch
	}
	if repo.Head != "" {
		m["head"] = repo.Head
	}
	return m
}

func printProgress(w io.Writer) func(review.Progress) {
	return func(p review.Progress) {
		switch p.Status {
		case "analyzing":
			fmt.Fprintf(w, "  [%d/%d] 🔍 %s\n", p.Index, p.Total, p.Filename)
		case "cached":
			fmt.Fprintf(w, "  [%d/%d] 💾 %s (cached)\n", p.Index, p.Total, p.Filename)
		case "skipped":
			fmt.Fprintf(w, "  [%d/%d] ⏭️  %s (no diff)\n", p.Index, p.Total, p.Filename)
		case "failed":
			fmt.Fprintf(w, "  [%d/%d] ❌ %s: %v\n", p.Index, p.Total, p.Filename, p.Err)
		}
	}
}

// webFactory builds the dashboard with the resolved page assets.
func webFactory(cfg config.Config, logger *log.Logger) func(ctx context.Context) (delivery.WebServer, error) {
	return func(ctx context.Context) (delivery.WebServer, error) {
		dir := cfg.DashboardDir
		if dir == "" {
			dir = web.DefaultDashboardDir(config.ExecutableDir())
		}
		assets, err := web.ResolveAssets(ctx, dir, web.ExecBuildRunner, logger)
		if err != nil {
			return nil, err
		}
		return web.New(web.Options{
			Port:     cfg.Delivery.WebPort,
			AutoOpen: cfg.Delivery.AutoOpenBrowser,
			Assets:   assets,
			Logger:   logger,
		}), nil
	}
}

func printDebug(logger *log.Logger, res config.Result) {
	cfg := res.Config
	logger.Printf("[config] provider=%s model=%s output=%s port=%d browser=%t vcs=%q",
		cfg.Provider, cfg.Model, cfg.Delivery.OutputMode, cfg.Delivery.WebPort, cfg.Delivery.AutoOpenBrowser, cfg.VCSType)
	logger.Printf("[config] api key configured: %t", cfg.APIKey != "")
	for _, l := range res.Loaded() {
		logger.Printf("[config] loaded %s: %s", l.Name, l.Path)
	}
}
