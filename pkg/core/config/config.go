// Package config collects the process-level settings shared by the API
// server, the CLI and the MCP server. Settings come from the
// environment; the agent/provider mapping lives separately in
// config/models.yaml.
package config

import (
	"fmt"
	"os"
	"strconv"

	"bundesanzeiger/pkg/core/cache"
)

type Config struct {
	Env         string
	ListenAddr  string
	DBPath      string
	DatabaseURL string
	AIProvider  string
	ModelsPath  string
	SolverURL   string
	SolverKey   string
	Threshold   int
}

// Load reads the configuration from the environment. Every value has a
// usable default, so Load never fails on a bare environment.
func Load() Config {
	return Config{
		Env:         getenv("APP_ENV", "development"),
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
		DBPath:      getenv("CACHE_DB_PATH", "data/bundesanzeiger.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AIProvider:  os.Getenv("AI_PROVIDER"),
		ModelsPath:  getenv("MODELS_CONFIG", "config/models.yaml"),
		SolverURL:   os.Getenv("CAPTCHA_SOLVER_URL"),
		SolverKey:   os.Getenv("CAPTCHA_SOLVER_KEY"),
		Threshold:   getenvInt("CACHE_SIMILARITY_THRESHOLD", cache.DefaultSimilarityThreshold),
	}
}

// UsePostgres reports whether the shared Postgres cache backend is
// configured instead of the local SQLite file.
func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.Atoi(v); err == nil {
			return out
		}
		fmt.Fprintf(os.Stderr, "ignoring non-numeric %s=%q\n", key, v)
	}
	return def
}
