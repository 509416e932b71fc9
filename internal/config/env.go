package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"basket-rules/internal/errors"
)

// Environment variables that override file settings.
const (
	EnvInput        = "BASKET_INPUT"
	EnvMinSupport   = "BASKET_MIN_SUPPORT"
	EnvMetric       = "BASKET_METRIC"
	EnvMinThreshold = "BASKET_MIN_THRESHOLD"
	EnvMaxLen       = "BASKET_MAX_LEN"
	EnvStore        = "BASKET_STORE"
	EnvAddr         = "BASKET_ADDR"
	EnvLogLevel     = "BASKET_LOG_LEVEL"
)

// LoadDotEnv loads the first readable file among envFiles into the process
// environment. Variables already set are not overwritten. Missing files are
// not an error.
func LoadDotEnv(envFiles ...string) bool {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			return true
		}
	}
	return false
}

// ApplyEnv overrides fields from BASKET_* environment variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvInput); ok {
		c.Input.Path = v
	}
	if v, ok := get(EnvMinSupport); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError(EnvMinSupport, v, err)
		}
		c.Mining.MinSupport = f
	}
	if v, ok := get(EnvMetric); ok {
		c.Mining.Metric = strings.ToLower(v)
	}
	if v, ok := get(EnvMinThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError(EnvMinThreshold, v, err)
		}
		c.Mining.MinThreshold = f
	}
	if v, ok := get(EnvMaxLen); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvMaxLen, v, err)
		}
		c.Mining.MaxLen = n
	}
	if v, ok := get(EnvStore); ok {
		c.Store.Path = v
	}
	if v, ok := get(EnvAddr); ok {
		c.Server.Addr = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Logging.Level = strings.ToLower(v)
	}
	return nil
}

func envError(key, value string, err error) error {
	return errors.Config("invalid environment variable", err).
		WithContext("variable", key).
		WithContext("value", value)
}
