package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 80.0, cfg.AgeMax)
	assert.Equal(t, 70.0, cfg.KPSMin)
	assert.Equal(t, []float64{40, 50, 60, 70}, cfg.AgeCutpoints)
	assert.Equal(t, filepath.Join("results", "matched_cohort.csv"), cfg.MatchedPath())
}

func TestLoadOverrides(t *testing.T) {

	path := filepath.Join(t.TempDir(), "conf.yaml")
	body := "input: other.csv\nage_max: 75\nage_cutpoints: [45, 65]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "other.csv", cfg.Input)
	assert.Equal(t, 75.0, cfg.AgeMax)
	assert.Equal(t, []float64{45, 65}, cfg.AgeCutpoints)

	// Untouched keys keep their defaults.
	assert.Equal(t, 70.0, cfg.KPSMin)
	assert.Len(t, cfg.Locations, 4)
}

func TestLoadRejectsEmptyCutpoints(t *testing.T) {

	path := filepath.Join(t.TempDir(), "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("age_cutpoints: []\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
