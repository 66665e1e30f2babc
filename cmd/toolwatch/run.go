package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentdev/toolwatch/internal/common/git"
	"github.com/agentdev/toolwatch/internal/common/logger"
	"github.com/agentdev/toolwatch/internal/common/output"
	"github.com/agentdev/toolwatch/internal/config"
	"github.com/agentdev/toolwatch/internal/docpatch"
	"github.com/agentdev/toolwatch/internal/pipeline"
)

// Exit codes. Schedulers key retry and alerting behavior off these, so
// each failure class gets its own code.
const (
	exitOK              = 0
	exitFailure         = 1
	exitConfigError     = 2
	exitNoData          = 3
	exitSectionNotFound = 4
	exitLockHeld        = 5
)

var (
	// runDryRun writes the report files but touches nothing else
	runDryRun bool
	// runSince overrides the lookback window in days
	runSince int
	// runTop overrides the maximum number of reported signals
	runTop int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full watch cycle",
	Long: `Fetch upstream versions and community signals, rank them, write the
report files, and patch the documentation section.

Examples:
  toolwatch run                 Full cycle with the configured settings
  toolwatch run --dry-run       Write the report files only, touch nothing else
  toolwatch run --since 14      Widen the signal window to two weeks
  toolwatch run --top 5         Report only the five strongest signals`,
	Run: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Write the report files but skip the document patch, baseline, and VCS")
	runCmd.Flags().IntVar(&runSince, "since", 0, "Lookback window in days (overrides config)")
	runCmd.Flags().IntVar(&runTop, "top", 0, "Maximum number of reported signals (overrides config)")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(exitConfigError)
	}

	// Scheduled runs have no terminal; keep a trail on disk.
	if err := logger.Default().EnableFileLogging(); err != nil {
		logger.Warn("file logging unavailable: %v", err)
	}
	defer logger.Default().Close()

	var gitExec git.Executor
	if cfg.Git.Enabled {
		workDir := cfg.Git.WorkDir
		if workDir == "" {
			workDir = "."
		}
		gitExec = git.NewRunner(workDir)
	}

	opts := pipeline.Options{
		DryRun:     runDryRun,
		WindowDays: runSince,
		Top:        runTop,
	}

	p := pipeline.New(cfg, opts, gitExec)
	result, err := p.Run(context.Background())
	if err != nil {
		logger.Error("run failed: %v", err)
		os.Exit(exitCodeFor(err))
	}

	displayRunResult(result)
}

// exitCodeFor maps pipeline failures to their exit code class.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrLockHeld):
		return exitLockHeld
	case errors.Is(err, docpatch.ErrSectionNotFound),
		errors.Is(err, docpatch.ErrSectionAmbiguous):
		return exitSectionNotFound
	case errors.Is(err, pipeline.ErrNoData):
		return exitNoData
	case isConfigError(err):
		return exitConfigError
	default:
		return exitFailure
	}
}

// isConfigError reports whether the failure is something the operator
// fixes in a config file rather than a transient condition.
func isConfigError(err error) bool {
	for _, sentinel := range []error{
		config.ErrDocumentPathNotSet,
		config.ErrSectionNotSet,
		config.ErrInvalidWeights,
		config.ErrInvalidWindow,
		config.ErrSourcesFileNotFound,
		config.ErrInvalidSourceType,
		config.ErrMissingPackage,
		config.ErrMissingRepo,
		config.ErrMissingURL,
		config.ErrMissingSubreddit,
		config.ErrMissingParser,
		config.ErrMissingCredential,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// loadConfig loads from the --config path when given, otherwise from the
// standard locations.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

// displayRunResult summarizes a completed run on the terminal.
func displayRunResult(result *pipeline.Result) {
	rep := result.Report

	fmt.Println()
	output.PrintHeader("Run Complete")
	fmt.Println()

	if len(rep.Changes) == 0 {
		output.Dim.Println("  No version changes")
	} else {
		for _, change := range rep.Changes {
			fmt.Print("  ")
			output.PrintChange(change.Package.Identity(), change.OldVersion, change.NewVersion)
		}
	}

	fmt.Println()
	output.PrintInfo("%d signals reported", len(rep.Signals))
	for _, sig := range rep.Signals {
		output.Dim.Printf("  %.2f  %s\n", sig.Score, sig.Title)
	}

	if len(rep.Omissions) > 0 {
		fmt.Println()
		for _, failure := range rep.Omissions {
			output.PrintWarning("source %s omitted: %s", failure.Source, failure.Reason)
		}
	}
	for _, name := range result.Disabled {
		output.PrintWarning("source %s disabled: credential not set", name)
	}

	fmt.Println()
	output.PrintSuccess("Report written to %s", result.ReportMarkdownPath)
	if runDryRun {
		output.PrintInfo("Dry run: document, baseline, and repository untouched")
		return
	}
	if result.DocumentPatched {
		output.PrintSuccess("Documentation section updated")
	} else {
		output.PrintInfo("Documentation section already up to date")
	}
}
