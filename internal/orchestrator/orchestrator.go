// Package orchestrator drives a run from build capture through analysis to the
// aggregated result.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pthm/cchecker/internal/analyzer"
	"github.com/pthm/cchecker/internal/buildlog"
	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/source"
)

// Event reports the completion of one (unit, analyzer) pair
type Event struct {
	Done     int
	Total    int
	Analyzer string
	File     string
	Err      error
}

func (e Event) String() string {
	status := "successfully"
	if e.Err != nil {
		status = "with errors"
	}
	return fmt.Sprintf("[%d/%d] %s analyzed %s %s", e.Done, e.Total, e.Analyzer, filepath.Base(e.File), status)
}

// Options configures a run. It is not modified by the orchestrator.
type Options struct {
	Adapters []analyzer.Adapter
	Filter   analyzer.RuleFilter
	// Jobs bounds concurrent analyzer processes; zero means runtime.NumCPU()
	Jobs int
	// Snippets fills in missing snippets during aggregation (optional)
	Snippets *source.Cache
	Logger   *zap.SugaredLogger
	// OnState is called on every state transition (optional)
	OnState func(State)
	// OnProgress is called once per finished pair, never concurrently (optional)
	OnProgress func(Event)
	// OnUnits is called with the number of captured units before analysis (optional)
	OnUnits func(units, pairs int)
}

// Orchestrator runs the pipeline. A single Orchestrator runs once at a time.
type Orchestrator struct {
	opts  Options
	mu    sync.Mutex
	state State
}

// New creates an orchestrator in the Idle state
func New(opts Options) *Orchestrator {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Orchestrator{opts: opts}
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.opts.Logger.Debugw("state changed", "state", s.String())
	if o.opts.OnState != nil {
		o.opts.OnState(s)
	}
}

// Run captures the compilation units and analyzes them
func (o *Orchestrator) Run(ctx context.Context, capturer buildlog.Capturer) (*results.RunResult, error) {
	o.setState(Building)
	db, err := capturer.Capture(ctx)
	if err != nil {
		o.setState(Failed)
		if ctx.Err() != nil {
			return results.Empty(), &RunError{Reason: Cancelled, Err: ctx.Err()}
		}
		var failure *buildlog.BuildFailure
		if errors.As(err, &failure) {
			return nil, &RunError{Reason: BuildFailed, Err: err}
		}
		return nil, fmt.Errorf("capture compilation units: %w", err)
	}
	return o.analyze(ctx, db)
}

// Analyze analyzes an already captured compilation database. Nothing is built,
// so the run starts in Analyzing.
func (o *Orchestrator) Analyze(ctx context.Context, db *buildlog.Database) (*results.RunResult, error) {
	return o.analyze(ctx, db)
}

type pair struct {
	unit    buildlog.CompilationUnit
	adapter int
}

type outcome struct {
	findings    []results.Finding
	diagnostics []results.Diagnostic
	err         error
	skipped     bool
}

func (o *Orchestrator) analyze(ctx context.Context, db *buildlog.Database) (*results.RunResult, error) {
	if db.Len() == 0 {
		o.opts.Logger.Infow("no compilation units captured")
		o.setState(Done)
		return o.finish(results.Aggregate(nil, nil), 0), nil
	}

	o.setState(Analyzing)

	adapters, diagnostics := o.preflight()
	if len(adapters) == 0 {
		o.setState(Failed)
		r := o.finish(results.Aggregate(nil, diagnostics), db.Len())
		return r, &RunError{Reason: AllAdaptersFailed, Err: errors.New("no analyzer is available")}
	}

	pairs := make([]pair, 0, db.Len()*len(adapters))
	for _, unit := range db.Units {
		for i := range adapters {
			pairs = append(pairs, pair{unit: unit, adapter: i})
		}
	}
	if o.opts.OnUnits != nil {
		o.opts.OnUnits(db.Len(), len(pairs))
	}

	outcomes := o.runPairs(ctx, adapters, pairs)

	if ctx.Err() != nil {
		o.setState(Failed)
		return results.Empty(), &RunError{Reason: Cancelled, Err: ctx.Err()}
	}

	var (
		findings  []results.Finding
		attempted int
		failures  int
		errs      error
		seen      = make(map[string]bool)
	)
	for _, out := range outcomes {
		diagnostics = append(diagnostics, out.diagnostics...)
		findings = append(findings, out.findings...)
		if out.skipped {
			continue
		}
		attempted++
		if out.err != nil && !isParseError(out.err) {
			failures++
			if msg := out.err.Error(); !seen[msg] {
				seen[msg] = true
				errs = multierr.Append(errs, out.err)
			}
		}
	}

	o.setState(Aggregating)
	findings, rejected := rejectForeign(findings, db)
	diagnostics = append(diagnostics, rejected...)
	if o.opts.Snippets != nil {
		o.opts.Snippets.Enrich(findings)
	}
	r := o.finish(results.Aggregate(findings, diagnostics), db.Len())

	if attempted == 0 || failures == attempted {
		o.setState(Failed)
		if errs == nil {
			errs = errors.New("every analyzer was disabled")
		}
		return r, &RunError{Reason: AllAdaptersFailed, Err: errs}
	}

	o.setState(Done)
	return r, nil
}

// preflight keeps the enabled adapters whose executable exists
func (o *Orchestrator) preflight() ([]analyzer.Adapter, []results.Diagnostic) {
	var (
		adapters    []analyzer.Adapter
		diagnostics []results.Diagnostic
	)
	for _, a := range o.opts.Adapters {
		if len(o.opts.Filter.EnabledAnalyzers) > 0 && !o.opts.Filter.Enabled(a.Kind()) {
			continue
		}
		if err := a.Available(); err != nil {
			o.opts.Logger.Warnw("analyzer unavailable", "analyzer", a.Name(), "error", err)
			diagnostics = append(diagnostics, results.Diagnostic{
				Kind:     results.DiagToolNotFound,
				Analyzer: a.Name(),
				Message:  err.Error(),
			})
			continue
		}
		adapters = append(adapters, a)
	}
	return adapters, diagnostics
}

// runPairs analyzes every pair on a bounded pool. Each pair writes only its own outcome slot.
func (o *Orchestrator) runPairs(ctx context.Context, adapters []analyzer.Adapter, pairs []pair) []outcome {
	outcomes := make([]outcome, len(pairs))
	disabled := make([]atomic.Bool, len(adapters))

	var (
		progressMu sync.Mutex
		done       int
	)
	report := func(p pair, err error) {
		progressMu.Lock()
		defer progressMu.Unlock()
		done++
		ev := Event{Done: done, Total: len(pairs), Analyzer: adapters[p.adapter].Name(), File: p.unit.AbsPath(), Err: err}
		o.opts.Logger.Infow(ev.String())
		if o.opts.OnProgress != nil {
			o.opts.OnProgress(ev)
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(o.opts.Jobs)
	for i, p := range pairs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil || disabled[p.adapter].Load() {
				outcomes[i].skipped = true
				return nil
			}
			outcomes[i] = o.runPair(ctx, adapters[p.adapter], p.unit, &disabled[p.adapter])
			if ctx.Err() == nil && !outcomes[i].skipped {
				report(p, outcomes[i].err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (o *Orchestrator) runPair(ctx context.Context, a analyzer.Adapter, unit buildlog.CompilationUnit, disabled *atomic.Bool) outcome {
	start := time.Now()
	findings, err := a.Analyze(ctx, unit, o.opts.Filter)
	o.opts.Logger.Debugw("pair finished", "analyzer", a.Name(), "file", unit.AbsPath(),
		"findings", len(findings), "duration", time.Since(start), "error", err)

	out := outcome{findings: findings, err: err}
	if err == nil || ctx.Err() != nil {
		return out
	}

	diag := results.Diagnostic{Analyzer: a.Name(), File: unit.AbsPath(), Message: err.Error()}
	var (
		notFound *analyzer.ToolNotFoundError
		crashed  *analyzer.ToolCrashedError
		parseErr *analyzer.ParseError
	)
	switch {
	case errors.As(err, &notFound):
		// only the first pair to see the missing tool reports it
		if disabled.Swap(true) {
			return outcome{skipped: true}
		}
		diag.Kind = results.DiagToolNotFound
		diag.File = ""
	case errors.As(err, &crashed) && crashed.TimedOut:
		diag.Kind = results.DiagTimeout
	case errors.As(err, &crashed):
		diag.Kind = results.DiagToolCrashed
	case errors.As(err, &parseErr):
		diag.Kind = results.DiagParseError
	default:
		diag.Kind = results.DiagToolCrashed
	}
	o.opts.Logger.Warnw("analysis problem", "analyzer", a.Name(), "file", unit.AbsPath(), "error", err)
	out.diagnostics = []results.Diagnostic{diag}
	return out
}

func isParseError(err error) bool {
	var parseErr *analyzer.ParseError
	return errors.As(err, &parseErr)
}

// rejectForeign drops findings whose file is not a source of this run
func rejectForeign(findings []results.Finding, db *buildlog.Database) ([]results.Finding, []results.Diagnostic) {
	sources := make(map[string]bool, db.Len())
	for _, u := range db.Units {
		sources[u.AbsPath()] = true
	}

	var (
		kept     = make([]results.Finding, 0, len(findings))
		rejected []results.Diagnostic
	)
	for _, f := range findings {
		if sources[filepath.Clean(f.FilePath)] {
			kept = append(kept, f)
			continue
		}
		rejected = append(rejected, results.Diagnostic{
			Kind:     results.DiagRejected,
			Analyzer: f.Analyzer,
			File:     f.FilePath,
			Message:  fmt.Sprintf("%s at %s is outside the analyzed compilation units", f.Checker, f.Location()),
		})
	}
	return kept, rejected
}

func (o *Orchestrator) finish(r *results.RunResult, units int) *results.RunResult {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	r.Units = units
	return r
}
