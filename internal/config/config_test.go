package config

import (
	"os"
	"path/filepath"
	"testing"

	"basket-rules/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if c.Mining.MinSupport != 0.01 || c.Mining.Metric != "lift" || c.Mining.MinThreshold != 1.0 {
		t.Errorf("unexpected mining defaults %+v", c.Mining)
	}
	if c.Recommend.Count != 1 || c.Output.Precision != 4 || c.Server.Addr != ":8080" {
		t.Errorf("unexpected defaults %+v", c)
	}
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Mining.MinSupport != 0.01 {
		t.Errorf("expected defaults, got %+v", c.Mining)
	}
}

func TestSaveLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	c := Default()
	c.Mining.MinSupport = 0.05
	c.Mining.Metric = "confidence"
	c.Input.Path = "data.csv"
	if err := c.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Mining.MinSupport != 0.05 || got.Mining.Metric != "confidence" || got.Input.Path != "data.csv" {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestLoadHCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basket.hcl")
	src := `
mining {
  min_support = 0.2
  metric      = "leverage"
}

server {
  addr = "127.0.0.1:9000"
}
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Mining.MinSupport != 0.2 || c.Mining.Metric != "leverage" {
		t.Errorf("mining = %+v", c.Mining)
	}
	if c.Mining.MinThreshold != 1.0 {
		t.Errorf("unset attribute should keep default, got %v", c.Mining.MinThreshold)
	}
	if c.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", c.Server.Addr)
	}
	if c.Output.Format != "cli" {
		t.Errorf("absent block should keep defaults, got %q", c.Output.Format)
	}
}

func TestLoadBadFiles(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
		body string
	}{
		{"json", "c.json", "{not json"},
		{"hcl", "c.hcl", "mining {"},
		{"hcl wrong type", "c.hcl", "mining {\n  max_len = \"x\"\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.IsType(err, errors.TypeConfig) {
				t.Errorf("Load() error = %v, want config error", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvInput:        "tx.csv",
		EnvMinSupport:   "0.3",
		EnvMetric:       "CONFIDENCE",
		EnvMinThreshold: "0.5",
		EnvMaxLen:       "2",
		EnvAddr:         ":9999",
		EnvLogLevel:     "DEBUG",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	if err := c.applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}
	if c.Input.Path != "tx.csv" || c.Mining.MinSupport != 0.3 || c.Mining.Metric != "confidence" {
		t.Errorf("unexpected %+v", c)
	}
	if c.Mining.MinThreshold != 0.5 || c.Mining.MaxLen != 2 {
		t.Errorf("unexpected mining %+v", c.Mining)
	}
	if c.Server.Addr != ":9999" || c.Logging.Level != "debug" {
		t.Errorf("unexpected server/logging %+v %+v", c.Server, c.Logging)
	}

	env[EnvMaxLen] = "two"
	if err := Default().applyEnv(lookup); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected config error for bad int, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BASKET_TEST_DOTENV=yes\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("BASKET_TEST_DOTENV") })

	if LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")) {
		t.Error("missing file reported as loaded")
	}
	if !LoadDotEnv(path) {
		t.Fatal("LoadDotEnv() = false")
	}
	if os.Getenv("BASKET_TEST_DOTENV") != "yes" {
		t.Error("variable not exported")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero support", func(c *Config) { c.Mining.MinSupport = 0 }},
		{"support above one", func(c *Config) { c.Mining.MinSupport = 1.5 }},
		{"unknown metric", func(c *Config) { c.Mining.Metric = "jaccard" }},
		{"negative max len", func(c *Config) { c.Mining.MaxLen = -1 }},
		{"zero count", func(c *Config) { c.Recommend.Count = 0 }},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); !errors.IsType(err, errors.TypeConfig) {
				t.Errorf("Validate() error = %v, want config error", err)
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	orig := Get()
	t.Cleanup(func() { Set(orig) })

	c := Default()
	c.Server.Addr = ":1"
	Set(c)
	if Get().Server.Addr != ":1" {
		t.Error("Set() not visible through Get()")
	}
}
