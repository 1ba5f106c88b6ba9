package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterlabs/arbiter/config"
)

func TestNewAppliesDefaultsThenOptions(t *testing.T) {
	cfg := config.New(config.WithIterations(500), config.WithStrategy(config.StrategyDPOR))
	assert.Equal(t, 500, cfg.Iterations)
	assert.Equal(t, config.StrategyDPOR, cfg.Strategy)
	assert.Equal(t, 10_000, cfg.MaxStepsPerIter)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsReplayWithoutTracePath(t *testing.T) {
	cfg := config.New(config.WithStrategy(config.StrategyReplay))
	assert.Error(t, cfg.Validate())
}

func TestLoadParsesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arbiter.yaml")
	const body = "iterations: 250\nstrategy: pct\nseed: 7\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Iterations)
	assert.Equal(t, config.StrategyPCT, cfg.Strategy)
	assert.EqualValues(t, 7, cfg.Seed)
}
