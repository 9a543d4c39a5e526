package cmd

import (
	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
	"github.com/KaramelBytes/scorelens-cli/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runModule loads the table at path and lets fill add the
// sections of a single analysis step before rendering.
func runModule(cmd *cobra.Command, path string, fill func(t *dataset.Table, r *report.Report, p report.Params) error) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	t, err := loadTable(path, log)
	if err != nil {
		return err
	}
	p, err := reportParams(cmd, log)
	if err != nil {
		return err
	}
	r := report.New(t, p.TotalTolerance)
	if err := fill(t, r, p); err != nil {
		return err
	}
	log.Debug("module complete", zap.String("command", cmd.Name()), zap.String("run_id", r.RunID))
	return emit(cmd, r)
}

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Descriptive statistics, distributions and the grouped box summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModule(cmd, args[0], func(t *dataset.Table, r *report.Report, p report.Params) error {
			if err := r.AddSummary(t, p.Describe); err != nil {
				return err
			}
			if err := r.AddDistributions(t, p.HistogramBins, p.DensityPoints); err != nil {
				return err
			}
			cols := t.Columns()
			return r.AddBox(t, cols[dataset.EssayCol], cols[dataset.InterviewCol])
		})
	},
}

var correlateCmd = &cobra.Command{
	Use:   "correlate <file>",
	Short: "Pearson correlations for all rows and the leading/trailing windows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModule(cmd, args[0], func(t *dataset.Table, r *report.Report, p report.Params) error {
			return r.AddSubgroups(t, p.BottomWindow, p.TopWindow)
		})
	},
}

var elbowCmd = &cobra.Command{
	Use:   "elbow <file>",
	Short: "Inertia per cluster count, to help choose k",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModule(cmd, args[0], func(t *dataset.Table, r *report.Report, p report.Params) error {
			return r.AddElbow(t, p.Elbow)
		})
	},
}

var clusterCmd = &cobra.Command{
	Use:   "cluster <file>",
	Short: "k-means clustering with a chosen k",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModule(cmd, args[0], func(t *dataset.Table, r *report.Report, p report.Params) error {
			return r.AddClusters(t, p.Cluster)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{describeCmd, correlateCmd, elbowCmd, clusterCmd} {
		rootCmd.AddCommand(c)
		addOutputFlags(c)
		addLoadFlags(c)
	}
	addWindowFlags(correlateCmd)
	addElbowFlags(elbowCmd)
	addFitFlags(elbowCmd)
	addClusterFlags(clusterCmd)
	addFitFlags(clusterCmd)
}
