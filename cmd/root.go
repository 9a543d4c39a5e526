package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/scorelens-cli/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
)

var rootCmd = &cobra.Command{
	Use:   "scorelens",
	Short: "ScoreLens CLI: exploratory analysis of exam score tables",
	Long: `ScoreLens loads a table of essay, interview and total scores and runs descriptive
statistics, subgroup correlations, an elbow sweep and k-means clustering over it,
rendering the results as Markdown, ASCII tables, JSON or YAML.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.scorelens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		warnf("failed to load config: %v", err)
		c = cfgpkg.Defaults()
	}
	cfg = c
}

// currentConfig returns the loaded configuration, loading it on first use.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

func newLogger() *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		warnf("debug logger unavailable: %v", err)
		return zap.NewNop()
	}
	return l
}

func successf(cmd *cobra.Command, format string, a ...any) {
	okColor.Fprintf(cmd.OutOrStdout(), "✓ "+format+"\n", a...)
}

func warnf(format string, a ...any) {
	warnColor.Fprintf(os.Stderr, "⚠ Warning: %s\n", fmt.Sprintf(format, a...))
}
