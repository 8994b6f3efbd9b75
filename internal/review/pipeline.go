package review

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/dshills/commitgate/internal/cache"
	"github.com/dshills/commitgate/internal/config"
	"github.com/dshills/commitgate/internal/providers"
	"github.com/dshills/commitgate/internal/redact"
	"github.com/dshills/commitgate/internal/vcs"
)

// Progress describes one step of a run, for display.
type Progress struct {
	Index    int
	Total    int
	Filename string
	Status   string // "analyzing", "done", "skipped", "failed", "cached"
	Err      error
}

// Pipeline reviews changed files one at a time.
type Pipeline struct {
	Backend      vcs.Backend
	Reviewer     providers.Reviewer
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64

	// Optional collaborators.
	Cache    *cache.Cache
	Redactor *redact.Redactor
	// Classify decides HasIssues. Defaults to DetectIssues over IssueKeywords,
	// which is also the default vocabulary's issue_keywords.
	Classify   func(analysis string) bool
	OnProgress func(Progress)
	Logger     *log.Logger

	redactions redact.Report
}

// New builds a Pipeline from configuration. A provider that cannot be
// constructed, for example because no API key is configured, is reported as
// an *InitError.
func New(ctx context.Context, cfg config.Config, backend vcs.Backend, logger *log.Logger) (*Pipeline, error) {
	reviewer, err := providers.New(ctx, providers.Settings{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
	})
	if err != nil {
		return nil, &InitError{Err: err}
	}

	c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		if logger != nil {
			logger.Printf("[review] cache disabled: %v", err)
		}
		c = nil
	}

	var r *redact.Redactor
	if cfg.RedactSecrets {
		r = redact.New(redact.DefaultPaths)
	}

	prompt := cfg.SystemPrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultSystemPrompt()
	}

	return &Pipeline{
		Backend:      backend,
		Reviewer:     reviewer,
		Model:        cfg.Model,
		SystemPrompt: prompt,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		Cache:        c,
		Redactor:     r,
		Logger:       logger,
	}, nil
}

// ChangedFiles lists the backend's changes and applies its filter.
func (p *Pipeline) ChangedFiles(ctx context.Context) (all, relevant []string) {
	all = p.Backend.ListChangedFiles(ctx)
	return all, p.Backend.FilterRelevant(all)
}

// Analyze reviews each path in order. Files with an empty diff are skipped,
// and a failing file is logged and omitted without stopping the batch. The
// returned slice is never nil.
func (p *Pipeline) Analyze(ctx context.Context, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for i, path := range paths {
		if ctx.Err() != nil {
			p.logf("[review] cancelled before %s: %v", path, ctx.Err())
			break
		}
		r, ok := p.analyzeFile(ctx, i, len(paths), path)
		if ok {
			results = append(results, r)
		}
	}
	return results
}

// Repository describes the working copy being reviewed.
func (p *Pipeline) Repository(ctx context.Context) vcs.RepoMeta {
	return vcs.MetaOf(ctx, p.Backend)
}

// Redactions returns what was scrubbed during Analyze.
func (p *Pipeline) Redactions() redact.Report {
	return p.redactions
}

func (p *Pipeline) analyzeFile(ctx context.Context, index, total int, path string) (res Result, ok bool) {
	step := Progress{Index: index + 1, Total: total, Filename: path}

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic: %v", rec)
			p.logf("[review] analysis of %s failed: %v", path, err)
			p.progress(step, "failed", err)
			res, ok = Result{}, false
		}
	}()

	diff := p.Backend.Diff(ctx, path)
	if strings.TrimSpace(diff) == "" {
		p.progress(step, "skipped", nil)
		return Result{}, false
	}
	content := p.Backend.Content(path)

	sentDiff, sentContent := diff, content
	if p.Redactor != nil {
		var rep redact.Report
		sentDiff, rep = p.Redactor.File(path, diff)
		p.addRedactions(rep)
		sentContent, rep = p.Redactor.File(path, content)
		p.addRedactions(rep)
	}

	userPrompt := BuildUserPrompt(path, sentDiff, sentContent)
	key := cache.BuildKey(p.reviewerName(), p.Model, p.SystemPrompt, userPrompt)

	if analysis, hit := p.Cache.Get(key); hit {
		p.progress(step, "cached", nil)
		return p.result(path, analysis, diff, true), true
	}

	p.progress(step, "analyzing", nil)
	start := time.Now()
	resp, err := p.Reviewer.Review(ctx, providers.ReviewRequest{
		SystemPrompt: p.SystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    p.MaxTokens,
		Temperature:  p.Temperature,
	})
	if err != nil {
		p.logf("[review] analysis of %s failed: %v", path, err)
		p.progress(step, "failed", err)
		return Result{}, false
	}
	p.logf("[review] %s analyzed in %s (%d tokens)", path, time.Since(start).Round(time.Millisecond), resp.TokensUsed)

	if err := p.Cache.Put(key, path, resp.Content); err != nil {
		p.logf("[review] caching %s: %v", path, err)
	}
	p.progress(step, "done", nil)
	return p.result(path, resp.Content, diff, false), true
}

func (p *Pipeline) result(path, analysis, diff string, cached bool) Result {
	classify := p.Classify
	if classify == nil {
		classify = func(s string) bool { return DetectIssues(s, IssueKeywords) }
	}
	return Result{
		Filename:  path,
		Analysis:  analysis,
		HasIssues: classify(analysis),
		Diff:      diff,
		Cached:    cached,
	}
}

func (p *Pipeline) reviewerName() string {
	if p.Reviewer == nil {
		return ""
	}
	return p.Reviewer.Name()
}

func (p *Pipeline) addRedactions(r redact.Report) {
	if r.Total() == 0 {
		return
	}
	if p.redactions == nil {
		p.redactions = redact.Report{}
	}
	p.redactions.Merge(r)
}

func (p *Pipeline) progress(step Progress, status string, err error) {
	if p.OnProgress == nil {
		return
	}
	step.Status = status
	step.Err = err
	p.OnProgress(step)
}

func (p *Pipeline) logf(format string, args ...any) {
	l := p.Logger
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	l.Printf(format, args...)
}
