package cmd

import (
	"github.com/KaramelBytes/scorelens-cli/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run the full analysis pipeline over a CSV/TSV/XLSX score table",
	Long: `Loads the table and runs descriptive statistics, subgroup correlations,
distributions, the elbow sweep and k-means clustering, in that order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer func() { _ = log.Sync() }()

		t, err := loadTable(args[0], log)
		if err != nil {
			return err
		}
		p, err := reportParams(cmd, log)
		if err != nil {
			return err
		}
		r, err := report.Build(t, p, log)
		if err != nil {
			return err
		}
		log.Debug("analysis complete", zap.String("run_id", r.RunID), zap.Int("notes", len(r.Notes)))
		return emit(cmd, r)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addOutputFlags(analyzeCmd)
	addLoadFlags(analyzeCmd)
	addWindowFlags(analyzeCmd)
	addElbowFlags(analyzeCmd)
	addClusterFlags(analyzeCmd)
	addFitFlags(analyzeCmd)
}
