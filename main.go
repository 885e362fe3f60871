// Package main is the command-line entry point of the job listing cleaning
// pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayushthakur13/cross-platform-job-analytics/config"
	"github.com/ayushthakur13/cross-platform-job-analytics/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger

	tablesFlag   string
	workersFlag  int
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "jobpipe",
	Short: "Normalize, deduplicate and featurize scraped job listings",
	Long: "jobpipe turns a raw scraped job listing table into a cleaned table with typed salary, " +
		"experience, date and categorical fields, and into a numeric feature table for analytics.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&tablesFlag, "tables", "", "YAML file extending the built-in lookup tables (overrides TABLES_PATH)")
	pf.IntVar(&workersFlag, "workers", 0, "Workers for per-record stages, 0 = one per CPU (overrides WORKERS)")
	pf.StringVar(&logLevelFlag, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
}

// setup loads configuration, applies flag overrides and validates the result
// before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	cfg = config.Load()

	flags := cmd.Flags()
	if flags.Changed("tables") {
		cfg.TablesPath = tablesFlag
	}
	if flags.Changed("workers") {
		cfg.Workers = workersFlag
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}
	if flags.Changed("ref") {
		cfg.ReferenceTime = refFlag
	}
	if flags.Changed("top-skills") {
		cfg.TopSkills = topSkillsFlag
	}
	if flags.Changed("store") {
		cfg.PostgresEnabled = storeFlag
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	logger = utils.NewLogger(cfg.LogLevel)
	return nil
}

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
