package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rpgo/bizplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDBPath, EnvAddr, EnvSeed, EnvDraws, EnvWorkers} {
		t.Setenv(key, "")
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath, s.DBPath)
	assert.Equal(t, DefaultAddr, s.Addr)
	assert.Zero(t, s.Seed)
	assert.Zero(t, s.Draws)
	assert.Zero(t, s.Workers)
}

func TestLoadSettings_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDBPath, "/tmp/runs.db")
	t.Setenv(EnvSeed, "1234")
	t.Setenv(EnvDraws, "5000")
	t.Setenv(EnvWorkers, "4")

	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/runs.db", s.DBPath)
	assert.Equal(t, int64(1234), s.Seed)
	assert.Equal(t, 5000, s.Draws)
	assert.Equal(t, 4, s.Workers)
}

func TestLoadSettings_FromFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even to "".
	require.NoError(t, os.Unsetenv(EnvAddr))
	require.NoError(t, os.Unsetenv(EnvSeed))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BIZPLAN_ADDR=:9090\nBIZPLAN_SEED=77\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv(EnvAddr)
		os.Unsetenv(EnvSeed)
	})

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", s.Addr)
	assert.Equal(t, int64(77), s.Seed)
}

func TestLoadSettings_InvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDraws, "lots")

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvDraws)
}

func TestLoadSettings_Negative(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkers, "-2")

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadSettings_AboveLimit(t *testing.T) {
	for key, value := range map[string]string{
		EnvDraws:   strconv.Itoa(domain.MaxDraws + 1),
		EnvWorkers: strconv.Itoa(domain.MaxWorkers + 1),
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestSettingsApplyTo_Caps(t *testing.T) {
	capped := Settings{}.ApplyTo(domain.MonteCarloSettings{Draws: domain.MaxDraws * 10, Workers: domain.MaxWorkers * 10})
	assert.Equal(t, domain.MaxDraws, capped.Draws)
	assert.Equal(t, domain.MaxWorkers, capped.Workers)
}

func TestSettingsApplyTo(t *testing.T) {
	s := Settings{Seed: 9, Draws: 300, Workers: 3}

	filled := s.ApplyTo(domain.MonteCarloSettings{Enabled: true})
	assert.Equal(t, int64(9), filled.Seed)
	assert.Equal(t, 300, filled.Draws)
	assert.Equal(t, 3, filled.Workers)

	kept := s.ApplyTo(domain.MonteCarloSettings{Seed: 1, Draws: 10, Workers: 1})
	assert.Equal(t, int64(1), kept.Seed)
	assert.Equal(t, 10, kept.Draws)
	assert.Equal(t, 1, kept.Workers)
}
