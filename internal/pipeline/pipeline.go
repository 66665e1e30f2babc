// Package pipeline orchestrates one full run: fetch, diff, rank, render,
// patch, persist. Each run walks a fixed state machine and either ends in
// StateDone with all artifacts written, or in StateFailed with nothing
// partially applied.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentdev/toolwatch/internal/common/git"
	"github.com/agentdev/toolwatch/internal/common/logger"
	"github.com/agentdev/toolwatch/internal/config"
	"github.com/agentdev/toolwatch/internal/docpatch"
	"github.com/agentdev/toolwatch/internal/report"
	"github.com/agentdev/toolwatch/internal/signal"
	"github.com/agentdev/toolwatch/internal/source"
	"github.com/agentdev/toolwatch/internal/track"
)

// State is the pipeline's current phase.
type State string

const (
	StateInit       State = "init"
	StateFetching   State = "fetching"
	StateDiffing    State = "diffing"
	StateRanking    State = "ranking"
	StateRendering  State = "rendering"
	StatePatching   State = "patching"
	StatePersisting State = "persisting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// ErrNoData is returned when every configured source failed and the run
// has nothing to report on.
var ErrNoData = errors.New("no source produced any data")

// lockFileName sits next to the baseline so concurrent runs against the
// same state directory exclude each other.
const lockFileName = "toolwatch.lock"

// Options are the per-invocation overrides.
type Options struct {
	// DryRun writes the report files but leaves the document, the
	// baseline, and the VCS untouched
	DryRun bool
	// WindowDays overrides the configured lookback window when positive
	WindowDays int
	// Top overrides the configured signal cap when positive
	Top int
}

// Result summarizes a completed run.
type Result struct {
	Report             *report.Report
	ReportMarkdownPath string
	ReportJSONPath     string
	// DocumentPatched reports whether the tracked document changed
	DocumentPatched bool
	// Disabled lists sources skipped for missing optional credentials
	Disabled []string
	State    State
}

// Pipeline runs the full fetch-to-patch cycle for one configuration.
type Pipeline struct {
	cfg     *config.Config
	opts    Options
	git     git.Executor
	state   State
	nowFunc func() time.Time
}

// New builds a Pipeline. gitExec may be nil when the VCS hand-off is
// disabled.
func New(cfg *config.Config, opts Options, gitExec git.Executor) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		opts:    opts,
		git:     gitExec,
		state:   StateInit,
		nowFunc: time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (p *Pipeline) SetNowFunc(fn func() time.Time) {
	p.nowFunc = fn
}

// State returns the pipeline's current phase.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) windowDays() int {
	if p.opts.WindowDays > 0 {
		return p.opts.WindowDays
	}
	return p.cfg.Ranking.WindowDays
}

func (p *Pipeline) top() int {
	if p.opts.Top > 0 {
		return p.opts.Top
	}
	return p.cfg.Ranking.Top
}

// Run executes the pipeline. It holds the run lock for its whole
// duration and observes the configured run deadline.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	lock, err := AcquireLock(filepath.Join(filepath.Dir(p.cfg.Paths.Baseline), lockFileName))
	if err != nil {
		p.state = StateFailed
		return nil, err
	}
	defer lock.Release()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.RunDeadline())
	defer cancel()

	result, err := p.run(ctx)
	if err != nil {
		p.state = StateFailed
		return nil, err
	}
	p.state = StateDone
	result.State = StateDone
	return result, nil
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	now := p.nowFunc()
	window := time.Duration(p.windowDays()) * 24 * time.Hour

	sources, err := config.LoadSources(p.cfg.Paths.Sources)
	if err != nil {
		return nil, err
	}

	baseline, err := track.LoadBaseline(p.cfg.Paths.Baseline)
	if err != nil {
		return nil, err
	}

	retryConfig := source.DefaultRetryConfig()
	retryConfig.Timeout = p.cfg.RequestTimeout()
	httpClient := source.NewClientWithConfig(retryConfig)
	connectors, err := source.Build(sources, window, httpClient, p.cfg.RequestTimeout())
	if err != nil {
		return nil, err
	}

	p.state = StateFetching
	observations, records, failures := p.fetch(ctx, connectors)

	total := len(connectors.Versions) + len(connectors.Signals)
	if total > 0 && len(observations) == 0 && len(records) == 0 {
		return nil, fmt.Errorf("%w: all %d sources failed", ErrNoData, total)
	}

	p.state = StateDiffing
	changes := track.Diff(baseline.Packages, observations, now)
	logger.Info("detected %d version changes across %d tracked tools", len(changes), baseline.Len())

	p.state = StateRanking
	ranker := signal.NewRanker(
		signal.Weights{
			Engagement: p.cfg.Ranking.Weights.Engagement,
			Recency:    p.cfg.Ranking.Weights.Recency,
			Keywords:   p.cfg.Ranking.Weights.Keywords,
		},
		p.cfg.Ranking.Keywords,
		window,
		p.cfg.Ranking.Similarity,
		p.top(),
		now,
	)
	ranked := ranker.Rank(records)
	logger.Info("ranked %d signals from %d records", len(ranked), len(records))

	p.state = StateRendering
	toolNames := trackedNames(baseline)
	rep := report.New(changes, ranked, failures, p.cfg.Ranking.Keywords, toolNames, p.windowDays(), now)

	result := &Result{Report: rep, Disabled: connectors.Disabled}

	mdPath, jsonPath, err := p.writeReports(rep, now)
	if err != nil {
		return nil, err
	}
	result.ReportMarkdownPath = mdPath
	result.ReportJSONPath = jsonPath

	if p.opts.DryRun {
		logger.Info("dry run: skipping document patch, baseline persist, and VCS hand-off")
		return result, nil
	}

	p.state = StatePatching
	patched, err := p.patchDocument(rep)
	if err != nil {
		return nil, err
	}
	result.DocumentPatched = patched

	p.state = StatePersisting
	if err := baseline.Save(); err != nil {
		return nil, err
	}

	if p.cfg.Git.Enabled && p.git != nil {
		if err := p.handOff(result); err != nil {
			// The run's artifacts are already on disk; a failed push is
			// reported but does not fail the run.
			logger.Error("VCS hand-off failed: %v", err)
		}
	}

	return result, nil
}

// fetch runs every connector through a bounded worker pool and waits for
// all of them. Individual failures become report omissions.
func (p *Pipeline) fetch(ctx context.Context, connectors *source.Connectors) ([]track.Observation, []source.Record, []source.Failure) {
	var (
		mu           sync.Mutex
		observations []track.Observation
		records      []source.Record
		failures     []source.Failure
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Fetch.Concurrency)

	for _, connector := range connectors.Versions {
		g.Go(func() error {
			result, err := connector.FetchVersion(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("version source %s failed: %v", connector.Name(), err)
				failures = append(failures, source.NewFailure(connector.Name(), err))
				return nil
			}
			observations = append(observations, track.Observation{
				Ecosystem: result.Ecosystem,
				Name:      result.Name,
				Version:   result.Version,
			})
			return nil
		})
	}

	for _, connector := range connectors.Signals {
		g.Go(func() error {
			fetched, err := connector.Fetch(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("signal source %s failed: %v", connector.Name(), err)
				failures = append(failures, source.NewFailure(connector.Name(), err))
				return nil
			}
			records = append(records, fetched...)
			return nil
		})
	}

	// Workers never return errors; Wait is purely the join barrier.
	g.Wait()

	return observations, records, failures
}

// writeReports writes the date-stamped Markdown and JSON artifacts.
// Re-running on the same day overwrites that day's files; other days'
// files are never touched.
func (p *Pipeline) writeReports(rep *report.Report, now time.Time) (string, string, error) {
	date := now.Format("2006-01-02")
	mdPath := filepath.Join(p.cfg.Paths.Reports, "report-"+date+".md")
	jsonPath := filepath.Join(p.cfg.Paths.Reports, "report-"+date+".json")

	if err := writeFileAtomic(mdPath, []byte(rep.Markdown())); err != nil {
		return "", "", fmt.Errorf("failed to write markdown report: %w", err)
	}

	data, err := rep.JSON()
	if err != nil {
		return "", "", err
	}
	if err := writeFileAtomic(jsonPath, data); err != nil {
		return "", "", fmt.Errorf("failed to write json report: %w", err)
	}

	logger.Info("wrote %s and %s", mdPath, jsonPath)
	return mdPath, jsonPath, nil
}

// patchDocument installs the report section into the tracked document.
// Returns false when the document already carries identical content.
func (p *Pipeline) patchDocument(rep *report.Report) (bool, error) {
	doc, err := os.ReadFile(p.cfg.Document.Path)
	if err != nil {
		return false, fmt.Errorf("failed to read document %s: %w", p.cfg.Document.Path, err)
	}

	patched, err := docpatch.Patch(string(doc), p.cfg.Document.Section, rep.Section())
	if err != nil {
		return false, err
	}

	if patched == string(doc) {
		logger.Info("document %s already up to date", p.cfg.Document.Path)
		return false, nil
	}

	if err := writeFileAtomic(p.cfg.Document.Path, []byte(patched)); err != nil {
		return false, fmt.Errorf("failed to write document: %w", err)
	}
	logger.Info("patched section %q in %s", p.cfg.Document.Section, p.cfg.Document.Path)
	return true, nil
}

// handOff commits and pushes the run's artifacts.
func (p *Pipeline) handOff(result *Result) error {
	paths := []string{p.cfg.Paths.Baseline, p.cfg.Document.Path}
	if result.ReportMarkdownPath != "" {
		paths = append(paths, result.ReportMarkdownPath, result.ReportJSONPath)
	}
	if err := p.git.Add(paths...); err != nil {
		return err
	}

	message := fmt.Sprintf("chore: tool watch report %s", p.nowFunc().Format("2006-01-02"))
	if err := p.git.Commit(message, p.cfg.Git.User, p.cfg.Git.Email); err != nil {
		return err
	}
	return p.git.Push()
}

// trackedNames collects tool names from the baseline for trend analysis.
func trackedNames(baseline *track.Baseline) []string {
	names := make([]string, 0, baseline.Len())
	seen := make(map[string]bool)
	for _, pkg := range baseline.Packages {
		if !seen[pkg.Name] {
			seen[pkg.Name] = true
			names = append(names, pkg.Name)
		}
	}
	return names
}

// writeFileAtomic writes via a temp file and rename so readers never
// observe a half-written file.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
