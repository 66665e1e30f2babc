package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentdev/toolwatch/internal/common/logger"
	"github.com/agentdev/toolwatch/internal/common/output"
	"github.com/agentdev/toolwatch/internal/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and their credential status",
	Run:   runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) {
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

	fmt.Println()
	output.PrintHeader("Registries (%d)", len(sources.Registries))
	fmt.Println()
	for _, name := range sortedNames(sources.Registries) {
		reg := sources.Registries[name]
		output.Tool.Printf("  %s", name)
		fmt.Printf("  [%s]", reg.Type)
		switch {
		case reg.Package != "":
			fmt.Printf("  %s", reg.Package)
		case reg.Repo != "":
			fmt.Printf("  %s", reg.Repo)
		case reg.URL != "":
			fmt.Printf("  %s", reg.URL)
		}
		fmt.Println()
	}

	fmt.Println()
	output.PrintHeader("Forums (%d)", len(sources.Forums))
	fmt.Println()
	for _, name := range sortedNames(sources.Forums) {
		forum := sources.Forums[name]
		output.Tool.Printf("  %s", name)
		fmt.Printf("  [%s]", forum.Type)

		if forum.TokenEnv == "" {
			fmt.Println()
			continue
		}

		// Report presence only; the credential value itself never
		// reaches the terminal.
		_, enabled, err := forum.Credential()
		switch {
		case err != nil:
			output.Error.Printf("  %s missing (required)\n", forum.TokenEnv)
		case !enabled:
			output.Warning.Printf("  %s not set, source disabled\n", forum.TokenEnv)
		default:
			output.Success.Printf("  %s set\n", forum.TokenEnv)
		}
	}
	fmt.Println()
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
