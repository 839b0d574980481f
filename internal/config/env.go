package config

import (
	"os"
	"strconv"
)

// Environment variables recognized as overrides. Values set in the process
// environment (including via a .env file loaded in main) win over the YAML
// file but never over CLI flags.
const (
	EnvContentDir = "BLOGBUILDER_CONTENT_DIR"
	EnvOutputDir  = "BLOGBUILDER_OUTPUT_DIR"
	EnvPageSize   = "BLOGBUILDER_PAGE_SIZE"
	EnvStrict     = "BLOGBUILDER_STRICT"
)

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvContentDir); v != "" {
		cfg.Content.Dir = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pagination.PageSize = &n
		}
	}
	if v := os.Getenv(EnvStrict); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Build.Strict = b
		}
	}
}
