// Package config loads the dashboard configuration: which companies to
// analyze, period granularity, provider endpoint and cache behavior.
// Secrets (DATABASE_URL, GEMINI_API_KEY) stay in the environment; godotenv
// loads a local .env in the entrypoints.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"findash/pkg/core/statement"
)

// Config is the top-level configuration file shape.
type Config struct {
	// Companies maps ticker to display name.
	Companies map[string]string `yaml:"companies"`
	// YearsOfData bounds how much history a fetch requests.
	YearsOfData int `yaml:"years_of_data"`
	// Quarterly switches the whole run from annual to quarterly periods.
	Quarterly bool `yaml:"quarterly"`
	// ProviderBaseURL is the statement provider endpoint.
	ProviderBaseURL string `yaml:"provider_base_url"`
	// CacheTTLHours bounds how long a cached comparison is served.
	CacheTTLHours int `yaml:"cache_ttl_hours"`
	// CacheDir is the file cache location used when no database is set.
	CacheDir string `yaml:"cache_dir"`
	// CommentaryModel names the Gemini model for narrative generation.
	// Empty disables commentary.
	CommentaryModel string `yaml:"commentary_model"`
}

// Default returns the built-in configuration used when no file is supplied.
func Default() Config {
	return Config{
		Companies: map[string]string{
			"AAPL":  "Apple Inc.",
			"MSFT":  "Microsoft Corporation",
			"GOOGL": "Alphabet Inc.",
		},
		YearsOfData:   5,
		CacheTTLHours: 24,
	}
}

// Load reads a YAML config file, applying defaults for absent fields.
// On failure it returns the defaults alongside the error so callers can
// degrade instead of dying.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Companies) == 0 {
		cfg.Companies = Default().Companies
	}
	if cfg.YearsOfData <= 0 {
		cfg.YearsOfData = 5
	}
	if cfg.CacheTTLHours <= 0 {
		cfg.CacheTTLHours = 24
	}
	return cfg, nil
}

// PeriodType maps the quarterly toggle onto the statement vocabulary.
func (c Config) PeriodType() statement.PeriodType {
	if c.Quarterly {
		return statement.Quarterly
	}
	return statement.Annual
}

// Tickers returns the configured company IDs, sorted for deterministic runs.
func (c Config) Tickers() []string {
	out := make([]string, 0, len(c.Companies))
	for ticker := range c.Companies {
		out = append(out, ticker)
	}
	sort.Strings(out)
	return out
}
