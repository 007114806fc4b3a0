package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/markleyboyer/subway-equidistance/isochrone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
dataset: city.subway
listen: 0.0.0.0:8080
threshold: 3
thresholds: [15, 30]
walk_speed: 80
neo4j:
  user: neo4j
`

func TestConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(testYAML), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "city.subway", cfg.Dataset)
	assert.Equal(t, 3.0, cfg.Threshold)
	assert.Equal(t, []float64{15, 30}, cfg.Thresholds)
	// 未给出的字段保留默认值
	assert.Equal(t, isochrone.DEFAULT_CACHE_SIZE, cfg.CacheSize)

	env := map[string]string{"LISTEN": "0.0.0.0:9090", "NEO4J_PASSWORD": "secret", "WALK_SPEED": "60"}
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, "0.0.0.0:9090", cfg.Listen)
	assert.Equal(t, "neo4j", cfg.Neo4j.User)
	assert.Equal(t, "secret", cfg.Neo4j.Password)
	assert.Equal(t, 60.0, cfg.WalkSpeed)

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("listen", "localhost:52101", "")
	set.Float64("threshold", 5, "")
	set.Float64("walk-speed", 72, "")
	set.String("thresholds", "10,20,30,40", "")
	set.Bool("warm", false, "")
	require.NoError(t, set.Parse([]string{"-threshold", "7.5", "-thresholds", "5, 10", "-warm"}))
	require.NoError(t, cfg.ApplyFlags(set))
	assert.Equal(t, 7.5, cfg.Threshold)
	assert.Equal(t, []float64{5, 10}, cfg.Thresholds)
	assert.True(t, cfg.Warm)
	// 未显式给出的参数不覆盖
	assert.Equal(t, "0.0.0.0:9090", cfg.Listen)
	assert.Equal(t, 60.0, cfg.WalkSpeed)
	assert.NoError(t, cfg.Validate())
}

func TestConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: [1"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())
	cfg.Dataset = "data.json"
	cfg.WalkSpeed = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	assert.Error(t, cfg.ApplyEnv(func(k string) string {
		if k == "WALK_SPEED" {
			return "fast"
		}
		return ""
	}))
}

func TestParseThresholds(t *testing.T) {
	ts, err := parseThresholds("")
	require.NoError(t, err)
	assert.Nil(t, ts)

	ts, err = parseThresholds(" 10, 20 ,30")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, ts)

	_, err = parseThresholds("10,,20")
	assert.ErrorIs(t, err, isochrone.ErrInvalidThreshold)
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("EQUIDISTANCE_TEST_KEY=loaded\n"), 0o644))
	t.Setenv("EQUIDISTANCE_TEST_KEY", "")
	os.Unsetenv("EQUIDISTANCE_TEST_KEY")
	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("EQUIDISTANCE_TEST_KEY"))
}
