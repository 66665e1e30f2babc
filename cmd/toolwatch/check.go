package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentdev/toolwatch/internal/common/logger"
	"github.com/agentdev/toolwatch/internal/common/output"
	"github.com/agentdev/toolwatch/internal/config"
	"github.com/agentdev/toolwatch/internal/source"
	"github.com/agentdev/toolwatch/internal/track"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check upstream versions without writing anything",
	Long: `Fetch the current upstream version of every tracked tool and compare
against the baseline. Nothing is persisted; use 'toolwatch run' for the
full cycle.`,
	Run: runVersionCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runVersionCheck(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(exitConfigError)
	}

	sources, err := config.LoadSources(cfg.Paths.Sources)
	if err != nil {
		logger.Error("loading sources: %v", err)
		os.Exit(exitConfigError)
	}

	baseline, err := track.LoadBaseline(cfg.Paths.Baseline)
	if err != nil {
		logger.Error("loading baseline: %v", err)
		os.Exit(exitFailure)
	}

	retryConfig := source.DefaultRetryConfig()
	retryConfig.Timeout = cfg.RequestTimeout()
	httpClient := source.NewClientWithConfig(retryConfig)

	connectors, err := source.Build(sources, cfg.Window(), httpClient, cfg.RequestTimeout())
	if err != nil {
		logger.Error("building connectors: %v", err)
		os.Exit(exitCodeFor(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunDeadline())
	defer cancel()

	type checkResult struct {
		name    string
		current string
		fetched string
		err     error
	}

	var (
		mu      sync.Mutex
		results []checkResult
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Fetch.Concurrency)
	for _, connector := range connectors.Versions {
		g.Go(func() error {
			observed, err := connector.FetchVersion(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results = append(results, checkResult{name: connector.Name(), err: err})
				return nil
			}
			current := track.NoVersion
			if pkg, ok := baseline.Packages[observed.Identity()]; ok {
				current = pkg.Version
			}
			results = append(results, checkResult{
				name:    observed.Identity(),
				current: current,
				fetched: observed.Version,
			})
			return nil
		})
	}
	g.Wait()

	fmt.Println()
	output.PrintHeader("Version Check")
	fmt.Println()

	updates := 0
	for _, r := range results {
		switch {
		case r.err != nil:
			output.Error.Printf("  %s: %v\n", r.name, r.err)
		case track.IsNewer(r.fetched, r.current):
			updates++
			fmt.Print("  ")
			output.PrintChange(r.name, r.current, r.fetched)
		default:
			output.Dim.Printf("  %s: %s (up to date)\n", r.name, r.fetched)
		}
	}

	fmt.Println()
	if updates > 0 {
		output.PrintInfo("%d update(s) available; 'toolwatch run' will record them", updates)
	} else {
		output.PrintSuccess("All tracked tools are up to date")
	}
}
