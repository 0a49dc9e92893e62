package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/cchecker/internal/config"
	"github.com/pthm/cchecker/internal/logging"
	"github.com/pthm/cchecker/internal/orchestrator"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

// RootCmd is the cchecker command tree
var RootCmd = &cobra.Command{
	Use:   "cchecker",
	Short: "Run C/C++ static analyzers over a build",
	Long: `cchecker records the compilation units of a C/C++ build, runs
external static analyzers (clang-tidy, the clang static analyzer, cppcheck)
over every unit in parallel and reports the aggregated findings.

Typical workflow:
  cchecker log --build "make" --output ./reports
  cchecker analyze ./reports --output ./reports --analyzers clang-tidy
  cchecker parse ./reports

or all at once:
  cchecker check --build "make" --output ./reports`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default .cchecker.yaml if present)")
}

// ExitCode maps the error returned by a command to the process exit code
func ExitCode(err error) int {
	return orchestrator.ExitCode(err)
}

func newLogger() *zap.SugaredLogger {
	logger, err := logging.New(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return logging.Nop()
	}
	return logger
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
