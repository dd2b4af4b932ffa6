// Package config holds the run configuration shared by both pipeline
// stages: file locations, eligibility thresholds, and the CEM coarsening
// cutpoints.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Raw registry export
	Input string `yaml:"input"`

	// Directory receiving every report, plot and the matched cohort
	OutDir string `yaml:"outdir"`

	// Eligibility thresholds
	AgeMax float64 `yaml:"age_max"`
	KPSMin float64 `yaml:"kps_min"`

	// Tumor-location allow-list
	Locations []string `yaml:"locations"`

	// Coarsening cutpoints for the continuous matching covariates
	AgeCutpoints  []float64 `yaml:"age_cutpoints"`
	SizeCutpoints []float64 `yaml:"size_cutpoints"`
}

// Default is the study protocol configuration.
func Default() Config {
	return Config{
		Input:         "data/gbm_raw.csv",
		OutDir:        "results",
		AgeMax:        80,
		KPSMin:        70,
		Locations:     []string{"Frontal", "Temporal", "Parietal", "Occipital"},
		AgeCutpoints:  []float64{40, 50, 60, 70},
		SizeCutpoints: []float64{3, 5},
	}
}

// Load reads a YAML configuration, with Default values for anything the
// file leaves unset. An empty path returns the defaults.
func Load(path string) (Config, error) {

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if len(cfg.AgeCutpoints) == 0 || len(cfg.SizeCutpoints) == 0 {
		return cfg, fmt.Errorf("%s: cutpoints must not be empty", path)
	}

	return cfg, nil
}

// MatchedPath is where the cohort builder leaves the matched cohort for the
// survival stage.
func (c Config) MatchedPath() string {
	return filepath.Join(c.OutDir, "matched_cohort.csv")
}

// OutPath joins a result file name onto the output directory.
func (c Config) OutPath(name string) string {
	return filepath.Join(c.OutDir, name)
}
