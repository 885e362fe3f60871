package main

import (
	"github.com/spf13/cobra"

	"github.com/ayushthakur13/cross-platform-job-analytics/storage"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean a raw job listing table",
	Long: "Deduplicate a raw job listing CSV and derive normalized salary, experience, posting date, " +
		"company, city, job type, category and skill fields.",
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&inFlag, "in", "i", "", "Raw listings CSV (default RAW_INPUT_PATH)")
	cleanCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Cleaned CSV to write (default CLEANED_OUTPUT_PATH)")
	cleanCmd.Flags().StringVar(&refFlag, "ref", "", "RFC3339 reference instant for relative posting dates (default now)")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(_ *cobra.Command, _ []string) error {
	raw, err := storage.ReadRawCSV(orDefault(inFlag, cfg.RawInputPath))
	if err != nil {
		return err
	}

	cleaned, err := cleanRaw(raw)
	if err != nil {
		return err
	}

	path := orDefault(outFlag, cfg.CleanedOutputPath)
	csvWriter, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := writeCleaned(cleaned, csvWriter); err != nil {
		return err
	}
	logger.Info("Cleaned table saved to %s (%d rows)", path, len(cleaned.Records))
	return nil
}
