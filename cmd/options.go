package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/scorelens-cli/internal/cluster"
	cfgpkg "github.com/KaramelBytes/scorelens-cli/internal/config"
	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
	"github.com/KaramelBytes/scorelens-cli/internal/report"
	"github.com/KaramelBytes/scorelens-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Flags shared by the analysis commands. Zero values mean "use config".
var (
	optFormat string
	optOutput string

	optDelimiter  string
	optDecimal    string
	optSheetName  string
	optSheetIndex int

	optBottom  int
	optTop     int
	optMaxK    int
	optENInit  int
	optK       int
	optInit    string
	optNInit   int
	optMaxIter int
	optSeed    int64
	optWorkers int
	optColumns []string
)

func addOutputFlags(c *cobra.Command) {
	c.Flags().StringVarP(&optFormat, "format", "f", "", "output format: markdown|table|json|yaml (default from config)")
	c.Flags().StringVarP(&optOutput, "output", "o", "", "optional path to write the result")
}

func addLoadFlags(c *cobra.Command) {
	c.Flags().StringVar(&optDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (by extension if omitted)")
	c.Flags().StringVar(&optDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	c.Flags().StringVar(&optSheetName, "sheet-name", "", "XLSX: sheet name to load")
	c.Flags().IntVar(&optSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet position as shown by list (used if --sheet-name not provided)")
}

func addWindowFlags(c *cobra.Command) {
	c.Flags().IntVar(&optBottom, "bottom", 0, "rows in the leading subgroup window (default from config)")
	c.Flags().IntVar(&optTop, "top", 0, "rows in the trailing subgroup window (default from config)")
}

func addElbowFlags(c *cobra.Command) {
	c.Flags().IntVar(&optMaxK, "max-k", 0, "largest cluster count in the elbow sweep (default from config)")
	c.Flags().IntVar(&optENInit, "elbow-n-init", 0, "fits per cluster count in the elbow sweep (default from config)")
}

func addClusterFlags(c *cobra.Command) {
	c.Flags().IntVarP(&optK, "clusters", "k", 0, "number of clusters (default from config)")
	c.Flags().StringVar(&optInit, "init", "", "seeding: k-means++|random (default from config)")
	c.Flags().IntVar(&optNInit, "n-init", 0, "independent restarts (default from config)")
	c.Flags().IntVar(&optMaxIter, "max-iter", 0, "iteration cap per restart (default from config)")
}

// addFitFlags registers the flags every k-means based command shares.
func addFitFlags(c *cobra.Command) {
	c.Flags().Int64Var(&optSeed, "seed", 0, "random seed for reproducible runs")
	c.Flags().IntVar(&optWorkers, "workers", 0, "parallel restarts/trials (default from config)")
	c.Flags().StringSliceVar(&optColumns, "columns", nil, "columns to cluster on (default all)")
}

// loaderOptions builds loader options from config and flags.
func loaderOptions(log *zap.Logger) (dataset.Options, error) {
	c := currentConfig()
	opt := dataset.DefaultOptions()
	opt.Schema = c.Schema()
	opt.Logger = log
	switch optDelimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", optDelimiter)
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(optDecimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", optDecimal)
	}
	opt.SheetName = optSheetName
	opt.SheetIndex = optSheetIndex
	return opt, nil
}

func loadTable(path string, log *zap.Logger) (*dataset.Table, error) {
	opt, err := loaderOptions(log)
	if err != nil {
		return nil, err
	}
	return dataset.Load(path, opt)
}

// reportParams merges config with any flag the user set explicitly.
func reportParams(cmd *cobra.Command, log *zap.Logger) (report.Params, error) {
	c := currentConfig()
	f := cmd.Flags()
	changed := func(name string) bool {
		fl := f.Lookup(name)
		return fl != nil && fl.Changed
	}

	p := report.DefaultParams()
	p.TotalTolerance = c.TotalTolerance
	p.BottomWindow, p.TopWindow = c.BottomWindow, c.TopWindow
	p.Describe.OutlierThreshold = c.OutlierThreshold
	p.HistogramBins, p.DensityPoints = c.HistogramBins, c.DensityPoints
	p.Elbow.MaxK, p.Elbow.MaxIter, p.Elbow.NInit = c.ElbowMaxK, c.ElbowMaxIter, c.ElbowNInit
	p.Cluster.K, p.Cluster.NInit, p.Cluster.MaxIter = c.Clusters, c.NInit, c.MaxIter
	method, err := cluster.ParseInit(c.Init)
	if err != nil {
		return p, err
	}
	p.Cluster.Init = method
	seed := c.Seed
	workers := c.Workers

	if changed("bottom") {
		p.BottomWindow = optBottom
	}
	if changed("top") {
		p.TopWindow = optTop
	}
	if changed("max-k") {
		p.Elbow.MaxK = optMaxK
	}
	if changed("elbow-n-init") {
		p.Elbow.NInit = optENInit
	}
	if changed("clusters") {
		p.Cluster.K = optK
	}
	if changed("init") {
		if p.Cluster.Init, err = cluster.ParseInit(optInit); err != nil {
			return p, err
		}
	}
	if changed("n-init") {
		p.Cluster.NInit = optNInit
	}
	if changed("max-iter") {
		p.Cluster.MaxIter = optMaxIter
	}
	if changed("seed") {
		seed = cluster.Seed(optSeed)
	}
	if changed("workers") {
		workers = optWorkers
	}
	if changed("columns") {
		p.Cluster.Columns = optColumns
		p.Elbow.Columns = optColumns
	}
	p.Elbow.Seed, p.Cluster.Seed = seed, seed
	p.Elbow.Workers, p.Cluster.Workers = workers, workers
	p.Elbow.Logger, p.Cluster.Logger = log, log
	return p, nil
}

func outputFormat() (string, error) {
	f := optFormat
	if f == "" {
		f = currentConfig().DefaultFormat
	}
	if !cfgpkg.ValidFormat(f) {
		return "", fmt.Errorf("unsupported --format: %s (use %s)", f, strings.Join(cfgpkg.Formats, ", "))
	}
	return f, nil
}

// emit renders r and writes it to --output or stdout.
func emit(cmd *cobra.Command, r *report.Report) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	b, err := r.Render(format)
	if err != nil {
		return err
	}
	if optOutput != "" {
		if err := utils.SafeWriteFile(optOutput, b); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		successf(cmd, "Wrote %s report to %s", format, optOutput)
		return nil
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(b); err != nil {
		return err
	}
	if len(b) > 0 && b[len(b)-1] != '\n' {
		fmt.Fprintln(out)
	}
	return nil
}
