package main

import (
	"github.com/spf13/cobra"

	"github.com/ayushthakur13/cross-platform-job-analytics/models"
	"github.com/ayushthakur13/cross-platform-job-analytics/storage"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a data-quality report for a raw listing table",
	Long: "Print row, duplicate, missing-value and value-distribution metrics for a raw listing CSV. " +
		"With --ref the table is also cleaned and derived-field coverage is added.",
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&inFlag, "in", "i", "", "Raw listings CSV (default RAW_INPUT_PATH)")
	reportCmd.Flags().StringVar(&refFlag, "ref", "", "Also clean the table, resolving relative dates against this RFC3339 instant")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	raw, err := storage.ReadRawCSV(orDefault(inFlag, cfg.RawInputPath))
	if err != nil {
		return err
	}

	var cleaned *models.CleanedTable
	if cmd.Flags().Changed("ref") {
		if cleaned, err = cleanRaw(raw); err != nil {
			return err
		}
	}
	printReport(cmd.OutOrStdout(), raw, cleaned)
	return nil
}
