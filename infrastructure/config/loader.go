package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the loader reads, except
// the API key which keeps its conventional name.
const EnvPrefix = "MINDCANVAS_"

// Loader layers configuration sources.
type Loader struct {
	// file is an optional YAML file. Empty means none.
	file string
	// envFile is an optional dotenv file. A missing file is ignored.
	envFile string
	sources []string
}

// NewLoader creates a loader for the given YAML file and dotenv file.
func NewLoader(file, envFile string) *Loader {
	return &Loader{file: file, envFile: envFile}
}

// Load resolves the configuration. The order, lowest priority first:
//  1. defaults in code
//  2. the YAML file
//  3. the dotenv file (never overrides variables already set)
//  4. environment variables
func (l *Loader) Load() (*Config, error) {
	l.sources = l.sources[:0]
	cfg := Default()
	l.sources = append(l.sources, "defaults")

	if l.file != "" {
		if err := l.loadFile(cfg); err != nil {
			return nil, err
		}
	}

	if l.envFile != "" {
		if _, err := os.Stat(l.envFile); err == nil {
			if err := godotenv.Load(l.envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", l.envFile, err)
			}
			l.sources = append(l.sources, l.envFile)
		}
	}

	if err := l.loadEnvironmentVariables(cfg); err != nil {
		return nil, err
	}
	l.sources = append(l.sources, "environment")
	cfg.LoadedFrom = append([]string(nil), l.sources...)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// File returns the YAML file the loader reads.
func (l *Loader) File() string {
	return l.file
}

func (l *Loader) loadFile(cfg *Config) error {
	f, err := os.Open(l.file)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", l.file, err)
	}
	l.sources = append(l.sources, l.file)
	return nil
}

// loadEnvironmentVariables overlays environment variables on cfg.
func (l *Loader) loadEnvironmentVariables(cfg *Config) error {
	if val := env("ENV"); val != "" {
		cfg.Environment = Environment(strings.ToLower(val))
	}

	if val := env("HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := env("PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", EnvPrefix, err)
		}
		cfg.Server.Port = port
	}

	if val := env("STORAGE_DIR"); val != "" {
		cfg.Storage.Dir = val
	}
	if val := env("EPHEMERAL"); val != "" {
		cfg.Storage.Ephemeral = parseBool(val)
	}

	if val := env("LAYOUT_DIRECTION"); val != "" {
		cfg.Layout.Direction = val
	}
	if val := env("MERGE_POLICY"); val != "" {
		cfg.Layout.MergePolicy = val
	}

	// The original front end read API_KEY; GEMINI_API_KEY wins when both are set.
	if val := os.Getenv("API_KEY"); val != "" {
		cfg.AI.APIKey = val
	}
	if val := os.Getenv("GEMINI_API_KEY"); val != "" {
		cfg.AI.APIKey = val
	}
	if val := env("GEMINI_MODEL"); val != "" {
		cfg.AI.Model = val
	}
	if val := env("GEMINI_BASE_URL"); val != "" {
		cfg.AI.BaseURL = val
	}

	if val := env("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = strings.ToLower(val)
	}
	if val := env("LOG_FORMAT"); val != "" {
		cfg.Logging.Format = strings.ToLower(val)
	}
	if val := env("LOG_FILE"); val != "" {
		cfg.Logging.File = val
	}

	if val := env("METRICS_ENABLED"); val != "" {
		cfg.Metrics.Enabled = parseBool(val)
	}
	if val := env("TRACING_ENABLED"); val != "" {
		cfg.Tracing.Enabled = parseBool(val)
	}
	if val := env("TRACING_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
	}
	if val := env("TRACING_SAMPLE_RATE"); val != "" {
		rate, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%sTRACING_SAMPLE_RATE: %w", EnvPrefix, err)
		}
		cfg.Tracing.SampleRate = rate
	}
	if val := env("CORS_ORIGINS"); val != "" {
		cfg.CORS.AllowedOrigins = splitList(val)
	}
	return nil
}

func env(key string) string {
	return os.Getenv(EnvPrefix + key)
}

func parseBool(s string) bool {
	val, _ := strconv.ParseBool(s)
	return val
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
