package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rpgo/bizplan/internal/domain"
)

// Environment variables read by LoadSettings.
const (
	EnvDBPath  = "BIZPLAN_DB_PATH"
	EnvAddr    = "BIZPLAN_ADDR"
	EnvSeed    = "BIZPLAN_SEED"
	EnvDraws   = "BIZPLAN_DRAWS"
	EnvWorkers = "BIZPLAN_WORKERS"
)

const (
	DefaultDBPath = "./bizplan.db"
	DefaultAddr   = ":8080"
)

// Settings are process-level knobs, separate from the plan file.
type Settings struct {
	DBPath  string
	Addr    string
	Seed    int64
	Draws   int
	Workers int
}

// LoadSettings reads an optional .env file and then the BIZPLAN_* variables.
// Values already set in the environment win over the file.
func LoadSettings(envFiles ...string) (Settings, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to load env file: %w", err)
	}

	s := Settings{
		DBPath: getenv(EnvDBPath, DefaultDBPath),
		Addr:   getenv(EnvAddr, DefaultAddr),
	}

	var err error
	if s.Seed, err = envInt64(EnvSeed); err != nil {
		return Settings{}, err
	}
	draws, err := envInt64(EnvDraws)
	if err != nil {
		return Settings{}, err
	}
	workers, err := envInt64(EnvWorkers)
	if err != nil {
		return Settings{}, err
	}
	if draws < 0 || draws > domain.MaxDraws {
		return Settings{}, fmt.Errorf("%s must be between 0 and %d", EnvDraws, domain.MaxDraws)
	}
	if workers < 0 || workers > domain.MaxWorkers {
		return Settings{}, fmt.Errorf("%s must be between 0 and %d", EnvWorkers, domain.MaxWorkers)
	}
	s.Draws, s.Workers = int(draws), int(workers)
	return s, nil
}

// ApplyTo fills Monte Carlo settings the plan left unset and caps draws and
// workers.
func (s Settings) ApplyTo(mc domain.MonteCarloSettings) domain.MonteCarloSettings {
	if mc.Seed == 0 {
		mc.Seed = s.Seed
	}
	if mc.Draws == 0 {
		mc.Draws = s.Draws
	}
	if mc.Workers == 0 {
		mc.Workers = s.Workers
	}
	mc.Draws = min(mc.Draws, domain.MaxDraws)
	mc.Workers = min(mc.Workers, domain.MaxWorkers)
	return mc
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
