package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/cchecker/internal/analyzer"
	"github.com/pthm/cchecker/internal/buildlog"
	"github.com/pthm/cchecker/internal/config"
	"github.com/pthm/cchecker/internal/logging"
	"github.com/pthm/cchecker/internal/orchestrator"
	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/source"
	"github.com/pthm/cchecker/internal/ui"
)

// Analysis flags shared by analyze and check
var (
	analyzerNames    []string
	excludedCheckers []string
	jobs             int
	timeout          time.Duration
	tidyChecks       string
)

func addAnalysisFlags(c *cobra.Command) {
	c.Flags().StringSliceVar(&analyzerNames, "analyzers", nil, "Analyzers to run: clang-tidy, clangsa, cppcheck (default: all)")
	c.Flags().StringArrayVarP(&excludedCheckers, "exclude", "e", nil, "Disable a checker by exact name (repeatable)")
	c.Flags().IntVarP(&jobs, "jobs", "j", 0, "Parallel analyzer processes (default: number of CPUs)")
	c.Flags().DurationVar(&timeout, "timeout", 0, "Timeout for a single analyzer invocation (default 5m)")
	c.Flags().StringVar(&tidyChecks, "tidy-checks", "", "Value passed to clang-tidy --checks")
}

// analysisConfig loads the config file and applies the analysis flags on top
func analysisConfig(c *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if c.Flags().Changed("analyzers") {
		cfg.Analyzers = analyzerNames
	}
	cfg.Exclude = append(cfg.Exclude, excludedCheckers...)
	if c.Flags().Changed("jobs") {
		cfg.Jobs = jobs
	}
	if c.Flags().Changed("timeout") {
		cfg.Timeout = timeout
	}
	if c.Flags().Changed("tidy-checks") {
		cfg.ClangTidyChecks = tidyChecks
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// buildAdapters constructs one adapter per configured analyzer
func buildAdapters(cfg *config.Config, logger *zap.SugaredLogger) ([]analyzer.Adapter, analyzer.RuleFilter, error) {
	kinds, err := cfg.Kinds()
	if err != nil {
		return nil, analyzer.RuleFilter{}, err
	}
	severities, err := cfg.SeverityMap()
	if err != nil {
		return nil, analyzer.RuleFilter{}, err
	}

	adapters := make([]analyzer.Adapter, 0, len(kinds))
	for _, kind := range kinds {
		opts := analyzer.Options{
			Binary:     cfg.Binary(kind),
			Timeout:    cfg.Timeout,
			Severities: severities,
			Logger:     logger,
		}
		if kind == analyzer.ClangTidy {
			opts.Checks = cfg.ClangTidyChecks
		}
		a, err := analyzer.New(kind, opts)
		if err != nil {
			return nil, analyzer.RuleFilter{}, err
		}
		adapters = append(adapters, a)
	}
	return adapters, analyzer.NewRuleFilter(kinds, cfg.Exclude), nil
}

// runFunc starts a run on a configured orchestrator
type runFunc func(ctx context.Context, o *orchestrator.Orchestrator) (*results.RunResult, error)

// runAnalysis configures an orchestrator from flags and config, calls run and
// shows progress on u
func runAnalysis(ctx context.Context, c *cobra.Command, u *ui.UI, run runFunc) (*results.RunResult, error) {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := analysisConfig(c)
	if err != nil {
		return nil, err
	}
	snippets, err := source.NewCache(source.DefaultSize)
	if err != nil {
		return nil, err
	}

	var progress *ui.ProgressController
	if showProgress(u) {
		progress = u.StartProgress()
		logger = logging.Quiet(logger)
	}
	adapters, filter, err := buildAdapters(cfg, logger)
	if err != nil {
		progress.Done(err)
		return nil, err
	}

	o := orchestrator.New(orchestrator.Options{
		Adapters: adapters,
		Filter:   filter,
		Jobs:     cfg.Jobs,
		Snippets: snippets,
		Logger:   logger,
		OnState: func(s orchestrator.State) {
			switch s {
			case orchestrator.Building:
				progress.SetStage(ui.StageBuild)
			case orchestrator.Analyzing:
				progress.SetStage(ui.StageAnalyze)
			case orchestrator.Aggregating:
				progress.SetStage(ui.StageAggregate)
			}
		},
		OnUnits: func(units, pairs int) {
			if progress != nil {
				progress.SetPairCount(pairs)
				return
			}
			u.Status(fmt.Sprintf("Analyzing %d compilation units (%d analyzer runs, %d parallel)", units, pairs, cfg.Jobs))
		},
		OnProgress: func(ev orchestrator.Event) {
			if progress != nil {
				progress.PairDone(ev.String())
				return
			}
			u.Status(ev.String())
		},
	})

	r, err := run(ctx, o)
	progress.Done(err)
	return r, err
}

// showProgress reports whether the bubbletea progress display is used.
// Verbose runs print plain status lines so log output stays readable.
func showProgress(u *ui.UI) bool {
	return u.IsInteractive() && !verbose
}

// savingCapturer persists the captured database next to the results
type savingCapturer struct {
	inner buildlog.Capturer
	dir   string
	path  string
}

func (s *savingCapturer) Capture(ctx context.Context) (*buildlog.Database, error) {
	db, err := s.inner.Capture(ctx)
	if err != nil {
		return nil, err
	}
	path, err := buildlog.Save(s.dir, db)
	if err != nil {
		return nil, err
	}
	s.path = path
	return db, nil
}

// printRunSummary reports where the results went and any diagnostics
func printRunSummary(u *ui.UI, r *results.RunResult, resultsPath string) {
	for _, d := range r.Diagnostics {
		u.Warn("%s", d.String())
	}
	fmt.Fprintln(u.ErrWriter, u.Styles.Success.Render(fmt.Sprintf(
		"%s Analysis finished: %d reports in %d files from %d compilation units",
		u.Styles.IconSuccess, r.Total, len(r.PerFile), r.Units,
	)))
	if resultsPath != "" {
		fmt.Fprintf(u.ErrWriter, "Results written to %s\n", resultsPath)
	}
}
