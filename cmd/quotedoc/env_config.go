package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-quotedoc/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring a YAML file.
type envConfig struct {
	ConfigPath string        // QUOTEDOC_CONFIG: config file path
	OutputDir  string        // QUOTEDOC_OUTPUT_DIR: default output directory
	StoreDir   string        // QUOTEDOC_STORE_DIR: document store directory
	Addr       string        // QUOTEDOC_ADDR: server listen address
	Timeout    time.Duration // QUOTEDOC_TIMEOUT: export timeout
}

// knownEnvVars lists valid QUOTEDOC_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"QUOTEDOC_CONFIG":     true,
	"QUOTEDOC_OUTPUT_DIR": true,
	"QUOTEDOC_STORE_DIR":  true,
	"QUOTEDOC_ADDR":       true,
	"QUOTEDOC_TIMEOUT":    true,
	"QUOTEDOC_LOG":        true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("QUOTEDOC_CONFIG"),
		OutputDir:  os.Getenv("QUOTEDOC_OUTPUT_DIR"),
		StoreDir:   os.Getenv("QUOTEDOC_STORE_DIR"),
		Addr:       os.Getenv("QUOTEDOC_ADDR"),
	}
	if timeout := os.Getenv("QUOTEDOC_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized QUOTEDOC_* variables.
// Helps catch typos like QUOTEDOC_OUTDIR instead of QUOTEDOC_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "QUOTEDOC_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// loadConfig resolves the config path (flag > env), loads the file, and
// layers env-var overrides on top.
func loadConfig(flagPath string) (config.Config, error) {
	env := loadEnvConfig()
	warnUnknownEnvVars(os.Stderr)

	path := flagPath
	if path == "" {
		path = env.ConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	applyEnvConfig(env, &cfg)
	return cfg, nil
}

// applyEnvConfig applies environment variable values to config.
// Only sets values the config file left empty/zero, so the precedence is:
// CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.StoreDir != "" && cfg.Store.Dir == "" {
		cfg.Store.Dir = env.StoreDir
	}
	if env.Addr != "" && cfg.Server.Addr == "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Timeout > 0 && cfg.Raster.TimeoutSec == 0 {
		cfg.Raster.TimeoutSec = int(env.Timeout / time.Second)
	}
}
