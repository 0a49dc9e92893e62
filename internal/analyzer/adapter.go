package analyzer

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pthm/cchecker/internal/buildlog"
	"github.com/pthm/cchecker/internal/results"
)

// DefaultTimeout bounds a single analyzer invocation
const DefaultTimeout = 5 * time.Minute

// Adapter runs one external analyzer on one compilation unit and converts its
// output into findings. Implementations hold no mutable state and are safe for
// concurrent use.
type Adapter interface {
	Kind() Kind
	Name() string
	// Binary returns the executable the adapter invokes
	Binary() string
	// Available returns a *ToolNotFoundError when the executable cannot be located
	Available() error
	// Analyze returns the findings for unit with the filter's excluded checkers
	// removed. A *ParseError is returned alongside the findings that parsed.
	Analyze(ctx context.Context, unit buildlog.CompilationUnit, filter RuleFilter) ([]results.Finding, error)
}

// Options configures an adapter
type Options struct {
	// Binary overrides the executable name or path
	Binary string
	// Timeout for a single invocation; zero means DefaultTimeout
	Timeout time.Duration
	// Checks is passed to clang-tidy as --checks
	Checks string
	// ExtraArgs are appended to the analyzer command line
	ExtraArgs []string
	// Severities overrides the builtin severity map
	Severities *SeverityMap
	Logger     *zap.SugaredLogger
}

// New constructs the adapter for kind
func New(kind Kind, opts Options) (Adapter, error) {
	b := newBase(kind, opts)
	switch kind {
	case ClangTidy:
		return &clangTidy{base: b}, nil
	case ClangSA:
		return &clangSA{base: b}, nil
	case Cppcheck:
		return &cppcheck{base: b}, nil
	default:
		return nil, fmt.Errorf("unsupported analyzer kind %d", int(kind))
	}
}

// base holds the configuration shared by every adapter
type base struct {
	kind       Kind
	binary     string
	timeout    time.Duration
	checks     string
	extraArgs  []string
	severities *SeverityMap
	logger     *zap.SugaredLogger
}

func newBase(kind Kind, opts Options) base {
	b := base{
		kind:       kind,
		binary:     opts.Binary,
		timeout:    opts.Timeout,
		checks:     opts.Checks,
		extraArgs:  append([]string(nil), opts.ExtraArgs...),
		severities: opts.Severities,
		logger:     opts.Logger,
	}
	if b.binary == "" {
		b.binary = kind.DefaultBinary()
	}
	if b.timeout <= 0 {
		b.timeout = DefaultTimeout
	}
	if b.severities == nil {
		b.severities = DefaultSeverityMap()
	}
	if b.logger == nil {
		b.logger = zap.NewNop().Sugar()
	}
	return b
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) Name() string {
	return b.kind.String()
}

func (b *base) Binary() string {
	return b.binary
}

func (b *base) Available() error {
	if _, err := exec.LookPath(b.binary); err != nil {
		return &ToolNotFoundError{Kind: b.kind, Binary: b.binary, Err: err}
	}
	return nil
}

func (b *base) invocation(unit buildlog.CompilationUnit, args []string) invocation {
	return invocation{
		binary:  b.binary,
		args:    args,
		dir:     unit.Directory,
		timeout: b.timeout,
	}
}

// finding builds a normalized finding for this analyzer. Relative paths are
// resolved against the unit's working directory.
func (b *base) finding(unit buildlog.CompilationUnit, file string, line, column int, checker, message string, fallback results.Severity) results.Finding {
	if !filepath.IsAbs(file) {
		file = filepath.Join(unit.Directory, file)
	}
	if line < 1 {
		line = 1
	}
	if column < 1 {
		column = 1
	}
	return results.Finding{
		FilePath: filepath.Clean(file),
		Line:     line,
		Column:   column,
		Severity: b.severities.SeverityOf(b.kind, checker, fallback),
		Checker:  checker,
		Message:  message,
		Analyzer: b.kind.String(),
	}
}

// crashed reports a non-zero exit that produced nothing usable
func (b *base) crashed(unit buildlog.CompilationUnit, res *execResult) error {
	return &ToolCrashedError{
		Kind:     b.kind,
		File:     unit.AbsPath(),
		ExitCode: res.exitCode,
		Stderr:   string(res.stderr),
	}
}
