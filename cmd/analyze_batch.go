package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/scorelens-cli/internal/report"
	"github.com/KaramelBytes/scorelens-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	abOutDir string
	abQuiet  bool
	abKeepOn bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Run the full pipeline over multiple CSV/TSV/XLSX files with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.ExpandInputs(args)
		if err != nil {
			return err
		}
		format, err := outputFormat()
		if err != nil {
			return err
		}
		log := newLogger()
		defer func() { _ = log.Sync() }()
		p, err := reportParams(cmd, log)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		total := len(files)
		failed := 0
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			b, err := analyzeOne(path, format, p, log)
			if err != nil {
				if !abKeepOn {
					return fmt.Errorf("%s: %w", path, err)
				}
				failed++
				warnf("%s: %v", path, err)
				continue
			}
			if abOutDir != "" {
				outFile := utils.ReportName(abOutDir, path, optSheetName, report.Ext(format))
				if err := utils.SafeWriteFile(outFile, b); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				if !abQuiet {
					successf(cmd, "Wrote %s", outFile)
				}
				continue
			}
			if _, err := out.Write(b); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

func analyzeOne(path, format string, p report.Params, log *zap.Logger) ([]byte, error) {
	t, err := loadTable(path, log)
	if err != nil {
		return nil, err
	}
	r, err := report.Build(t, p, log)
	if err != nil {
		return nil, err
	}
	return r.Render(format)
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&optFormat, "format", "f", "", "output format: markdown|table|json|yaml (default from config)")
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory to write one report per input (stdout if omitted)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	analyzeBatchCmd.Flags().BoolVar(&abKeepOn, "keep-going", false, "continue with the remaining files after a failure")
	addLoadFlags(analyzeBatchCmd)
	addWindowFlags(analyzeBatchCmd)
	addElbowFlags(analyzeBatchCmd)
	addClusterFlags(analyzeBatchCmd)
	addFitFlags(analyzeBatchCmd)
}
