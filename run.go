package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayushthakur13/cross-platform-job-analytics/services"
	"github.com/ayushthakur13/cross-platform-job-analytics/storage"
)

var (
	cleanedOutFlag  string
	featuresOutFlag string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Clean, featurize and report in one pass",
	RunE:  runPipeline,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&inFlag, "in", "i", "", "Raw listings CSV (default RAW_INPUT_PATH)")
	f.StringVar(&cleanedOutFlag, "cleaned-out", "", "Cleaned CSV to write (default CLEANED_OUTPUT_PATH)")
	f.StringVar(&featuresOutFlag, "features-out", "", "Feature CSV to write (default FEATURES_OUTPUT_PATH)")
	f.StringVar(&refFlag, "ref", "", "RFC3339 reference instant for relative posting dates (default now)")
	f.IntVar(&topSkillsFlag, "top-skills", 0, "Number of skill indicator columns (overrides TOP_SKILLS)")
	f.BoolVar(&storeFlag, "store", false, "Also persist cleaned records to PostgreSQL (overrides POSTGRES_ENABLED)")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	logger.Info("=== Job listing pipeline starting ===")
	logger.Info("Config: workers %d | top skills %d | winsor %.2f-%.2f | store %t",
		cfg.Workers, cfg.TopSkills, cfg.WinsorLower, cfg.WinsorUpper, cfg.PostgresEnabled)

	raw, err := storage.ReadRawCSV(orDefault(inFlag, cfg.RawInputPath))
	if err != nil {
		return err
	}

	var sinks []storage.CleanedWriter
	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), logger)
		if err != nil {
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return err
		}
		sinks = append(sinks, pgWriter)
	}
	closeSinks := func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}

	cleaned, err := cleanRaw(raw)
	if err != nil {
		closeSinks()
		return err
	}
	if len(cleaned.Records) == 0 {
		logger.Warn("No listings survived cleaning")
	}

	cleanedPath := orDefault(cleanedOutFlag, cfg.CleanedOutputPath)
	csvWriter, err := storage.NewCSVWriter(cleanedPath)
	if err != nil {
		closeSinks()
		return err
	}
	if err := writeCleaned(cleaned, append([]storage.CleanedWriter{csvWriter}, sinks...)...); err != nil {
		return err
	}
	logger.Info("Cleaned table saved to %s (%d rows)", cleanedPath, len(cleaned.Records))

	features := services.NewFeatureAssembler(logger, cfg.Workers).Featurize(cleaned, cfg.TopSkills)
	featuresPath := orDefault(featuresOutFlag, cfg.FeaturesOutputPath)
	featureWriter, err := storage.NewCSVWriter(featuresPath)
	if err != nil {
		return err
	}
	if err := writeFeatures(features, featureWriter); err != nil {
		return err
	}
	logger.Info("Feature table saved to %s (%d rows × %d columns)",
		featuresPath, len(features.Records), len(features.Columns()))

	out := cmd.OutOrStdout()
	printReport(out, raw, cleaned)
	fmt.Fprintf(out, "  Done. Cleaned → %s | Features → %s\n\n", cleanedPath, featuresPath)
	return nil
}
