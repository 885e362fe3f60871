package main

import (
	"github.com/spf13/cobra"

	"github.com/ayushthakur13/cross-platform-job-analytics/services"
	"github.com/ayushthakur13/cross-platform-job-analytics/storage"
)

var featurizeCmd = &cobra.Command{
	Use:   "featurize",
	Short: "Build the numeric feature table from a cleaned table",
	RunE:  runFeaturize,
}

func init() {
	featurizeCmd.Flags().StringVarP(&inFlag, "in", "i", "", "Cleaned CSV written by clean (default CLEANED_OUTPUT_PATH)")
	featurizeCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Feature CSV to write (default FEATURES_OUTPUT_PATH)")
	featurizeCmd.Flags().IntVar(&topSkillsFlag, "top-skills", 0, "Number of skill indicator columns (overrides TOP_SKILLS)")

	rootCmd.AddCommand(featurizeCmd)
}

func runFeaturize(_ *cobra.Command, _ []string) error {
	cleaned, err := storage.ReadCleanedCSV(orDefault(inFlag, cfg.CleanedOutputPath))
	if err != nil {
		return err
	}

	features := services.NewFeatureAssembler(logger, cfg.Workers).Featurize(cleaned, cfg.TopSkills)

	path := orDefault(outFlag, cfg.FeaturesOutputPath)
	csvWriter, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := writeFeatures(features, csvWriter); err != nil {
		return err
	}
	logger.Info("Feature table saved to %s (%d rows × %d columns)",
		path, len(features.Records), len(features.Columns()))
	return nil
}
