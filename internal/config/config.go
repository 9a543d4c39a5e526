package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/scorelens-cli/internal/dataset"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Input schema
	EssayColumn     string  `mapstructure:"essay_column" yaml:"essay_column"`
	InterviewColumn string  `mapstructure:"interview_column" yaml:"interview_column"`
	TotalColumn     string  `mapstructure:"total_column" yaml:"total_column"`
	ScoreMin        float64 `mapstructure:"score_min" yaml:"score_min"`
	ScoreMax        float64 `mapstructure:"score_max" yaml:"score_max"`
	TotalTolerance  float64 `mapstructure:"total_tolerance" yaml:"total_tolerance"`

	// Subgroup windows (rows counted from the start and the end of the table)
	BottomWindow int `mapstructure:"bottom_window" yaml:"bottom_window"`
	TopWindow    int `mapstructure:"top_window" yaml:"top_window"`

	// Clustering
	ElbowMaxK    int    `mapstructure:"elbow_max_k" yaml:"elbow_max_k"`
	ElbowMaxIter int    `mapstructure:"elbow_max_iter" yaml:"elbow_max_iter"`
	ElbowNInit   int    `mapstructure:"elbow_n_init" yaml:"elbow_n_init"`
	Clusters     int    `mapstructure:"clusters" yaml:"clusters"`
	Init         string `mapstructure:"init" yaml:"init"`
	NInit        int    `mapstructure:"n_init" yaml:"n_init"`
	MaxIter      int    `mapstructure:"max_iter" yaml:"max_iter"`
	Seed         *int64 `mapstructure:"seed" yaml:"seed,omitempty"`
	Workers      int    `mapstructure:"workers" yaml:"workers"`

	// Descriptive extras
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	HistogramBins    int     `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	DensityPoints    int     `mapstructure:"density_points" yaml:"density_points"`

	DefaultFormat string `mapstructure:"default_format" yaml:"default_format"`
}

// Formats accepted by default_format and --format.
var Formats = []string{"markdown", "table", "json", "yaml"}

// Keys lists every settable key in display order.
var Keys = []string{
	"essay_column", "interview_column", "total_column", "score_min", "score_max", "total_tolerance",
	"bottom_window", "top_window",
	"elbow_max_k", "elbow_max_iter", "elbow_n_init", "clusters", "init", "n_init", "max_iter", "seed", "workers",
	"outlier_threshold", "histogram_bins", "density_points",
	"default_format",
}

func setDefaults(v *viper.Viper) {
	s := dataset.DefaultSchema()
	v.SetDefault("essay_column", s.Essay)
	v.SetDefault("interview_column", s.Interview)
	v.SetDefault("total_column", s.Total)
	v.SetDefault("score_min", s.Min)
	v.SetDefault("score_max", s.Max)
	v.SetDefault("total_tolerance", 0.01)
	// The reference notebook compared rows 0-10 and 18-28 of a 29-row table.
	v.SetDefault("bottom_window", 11)
	v.SetDefault("top_window", 11)
	v.SetDefault("elbow_max_k", 9)
	v.SetDefault("elbow_max_iter", 300)
	v.SetDefault("elbow_n_init", 10)
	v.SetDefault("clusters", 5)
	v.SetDefault("init", "k-means++")
	v.SetDefault("n_init", 10)
	v.SetDefault("max_iter", 500)
	v.SetDefault("workers", 1)
	v.SetDefault("outlier_threshold", 3.5)
	v.SetDefault("histogram_bins", 10)
	v.SetDefault("density_points", 64)
	v.SetDefault("default_format", "markdown")
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.scorelens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SCORELENS")
	v.AutomaticEnv()
	// seed has no default, so AutomaticEnv alone would never surface it.
	_ = v.BindEnv("seed")
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Defaults returns the built-in configuration without reading files or env.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".scorelens"), nil
}

// Schema returns the loader schema described by the configuration.
func (c *Global) Schema() dataset.Schema {
	return dataset.Schema{
		Essay:     c.EssayColumn,
		Interview: c.InterviewColumn,
		Total:     c.TotalColumn,
		Min:       c.ScoreMin,
		Max:       c.ScoreMax,
	}
}

// Set parses val for key and stores it.
func (c *Global) Set(key, val string) error {
	atoi := func(min int) (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < min {
			return 0, fmt.Errorf("invalid int for %s: %v (min %d)", key, val, min)
		}
		return i, nil
	}
	atof := func() (float64, error) {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float for %s: %v", key, val)
		}
		return f, nil
	}
	var err error
	switch key {
	case "essay_column":
		c.EssayColumn = val
	case "interview_column":
		c.InterviewColumn = val
	case "total_column":
		c.TotalColumn = val
	case "score_min":
		c.ScoreMin, err = atof()
	case "score_max":
		c.ScoreMax, err = atof()
	case "total_tolerance":
		c.TotalTolerance, err = atof()
	case "bottom_window":
		c.BottomWindow, err = atoi(1)
	case "top_window":
		c.TopWindow, err = atoi(1)
	case "elbow_max_k":
		c.ElbowMaxK, err = atoi(1)
	case "elbow_max_iter":
		c.ElbowMaxIter, err = atoi(1)
	case "elbow_n_init":
		c.ElbowNInit, err = atoi(1)
	case "clusters":
		c.Clusters, err = atoi(1)
	case "init":
		switch strings.ToLower(val) {
		case "k-means++", "kmeans++":
			c.Init = "k-means++"
		case "random":
			c.Init = "random"
		default:
			return fmt.Errorf("invalid init: %s (use k-means++ or random)", val)
		}
	case "n_init":
		c.NInit, err = atoi(1)
	case "max_iter":
		c.MaxIter, err = atoi(1)
	case "seed":
		if val == "" || val == "none" {
			c.Seed = nil
			return nil
		}
		s, perr := strconv.ParseInt(val, 10, 64)
		if perr != nil {
			return fmt.Errorf("invalid int for seed: %v", val)
		}
		c.Seed = &s
	case "workers":
		c.Workers, err = atoi(0)
	case "outlier_threshold":
		c.OutlierThreshold, err = atof()
	case "histogram_bins":
		c.HistogramBins, err = atoi(1)
	case "density_points":
		c.DensityPoints, err = atoi(2)
	case "default_format":
		if !ValidFormat(val) {
			return fmt.Errorf("invalid default_format: %s (use %s)", val, strings.Join(Formats, ", "))
		}
		c.DefaultFormat = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err != nil {
		return err
	}
	if c.ScoreMax < c.ScoreMin {
		return fmt.Errorf("score_max %v below score_min %v", c.ScoreMax, c.ScoreMin)
	}
	return nil
}

// Get returns the display form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "essay_column":
		return c.EssayColumn, nil
	case "interview_column":
		return c.InterviewColumn, nil
	case "total_column":
		return c.TotalColumn, nil
	case "score_min":
		return strconv.FormatFloat(c.ScoreMin, 'g', -1, 64), nil
	case "score_max":
		return strconv.FormatFloat(c.ScoreMax, 'g', -1, 64), nil
	case "total_tolerance":
		return strconv.FormatFloat(c.TotalTolerance, 'g', -1, 64), nil
	case "bottom_window":
		return strconv.Itoa(c.BottomWindow), nil
	case "top_window":
		return strconv.Itoa(c.TopWindow), nil
	case "elbow_max_k":
		return strconv.Itoa(c.ElbowMaxK), nil
	case "elbow_max_iter":
		return strconv.Itoa(c.ElbowMaxIter), nil
	case "elbow_n_init":
		return strconv.Itoa(c.ElbowNInit), nil
	case "clusters":
		return strconv.Itoa(c.Clusters), nil
	case "init":
		return c.Init, nil
	case "n_init":
		return strconv.Itoa(c.NInit), nil
	case "max_iter":
		return strconv.Itoa(c.MaxIter), nil
	case "seed":
		if c.Seed == nil {
			return "none", nil
		}
		return strconv.FormatInt(*c.Seed, 10), nil
	case "workers":
		return strconv.Itoa(c.Workers), nil
	case "outlier_threshold":
		return strconv.FormatFloat(c.OutlierThreshold, 'g', -1, 64), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "density_points":
		return strconv.Itoa(c.DensityPoints), nil
	case "default_format":
		return c.DefaultFormat, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// ValidFormat reports whether f names a supported output format.
func ValidFormat(f string) bool {
	for _, x := range Formats {
		if f == x {
			return true
		}
	}
	return false
}
