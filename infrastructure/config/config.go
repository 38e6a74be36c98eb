// Package config resolves application settings from defaults, a YAML file,
// a .env file and the process environment, in that order of priority.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"mindcanvas/domain/core/valueobjects"
	"mindcanvas/domain/services/layout"
	"mindcanvas/domain/services/merge"
	"mindcanvas/infrastructure/ai/gemini"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Test        Environment = "test"
)

// Config holds all application configuration
type Config struct {
	Environment Environment `yaml:"environment"`
	Server      Server      `yaml:"server"`
	Storage     Storage     `yaml:"storage"`
	Layout      Layout      `yaml:"layout"`
	AI          AI          `yaml:"ai"`
	Logging     Logging     `yaml:"logging"`
	Metrics     Metrics     `yaml:"metrics"`
	Tracing     Tracing     `yaml:"tracing"`
	CORS        CORS        `yaml:"cors"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-"`
}

type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// MaxRequestSize bounds request bodies, uploads included.
	MaxRequestSize int64 `yaml:"max_request_size"`
}

type Storage struct {
	// Dir holds the autosave file.
	Dir string `yaml:"dir"`
	// Ephemeral keeps the canvas in memory only.
	Ephemeral bool `yaml:"ephemeral"`
}

type Layout struct {
	Direction   string         `yaml:"direction"`
	MergePolicy string         `yaml:"merge_policy"`
	Options     layout.Options `yaml:",inline"`
}

type AI struct {
	APIKey              string        `yaml:"api_key"`
	Model               string        `yaml:"model"`
	BaseURL             string        `yaml:"base_url"`
	Timeout             time.Duration `yaml:"timeout"`
	GenerateTemperature float64       `yaml:"generate_temperature"`
	ExpandTemperature   float64       `yaml:"expand_temperature"`
	MaxGenerateContext  int           `yaml:"max_generate_context"`
	MaxExpandContext    int           `yaml:"max_expand_context"`
	Breaker             Breaker       `yaml:"breaker"`
}

type Breaker struct {
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold"`
	MinRequests      uint32        `yaml:"min_requests"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File enables rotated file output next to stderr.
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxAge     int    `yaml:"max_age"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Path      string `yaml:"path"`
}

// Tracing exports OpenTelemetry spans over OTLP/gRPC.
type Tracing struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAge         int      `yaml:"max_age"`
}

// Default returns a configuration that runs without any files.
func Default() *Config {
	ai := gemini.DefaultConfig()
	return &Config{
		Environment: Development,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  10 * 1024 * 1024,
		},
		Storage: Storage{
			Dir: ".mindcanvas",
		},
		Layout: Layout{
			Direction:   string(valueobjects.DefaultDirection),
			MergePolicy: string(merge.PolicyOverwrite),
			Options:     layout.DefaultOptions(),
		},
		AI: AI{
			Model:               ai.Model,
			BaseURL:             ai.BaseURL,
			Timeout:             ai.Timeout,
			GenerateTemperature: ai.GenerateTemperature,
			ExpandTemperature:   ai.ExpandTemperature,
			MaxGenerateContext:  ai.MaxGenerateContext,
			MaxExpandContext:    ai.MaxExpandContext,
			Breaker: Breaker{
				MaxRequests:      ai.Breaker.MaxRequests,
				Interval:         ai.Breaker.Interval,
				Timeout:          ai.Breaker.Timeout,
				FailureThreshold: ai.Breaker.FailureThreshold,
				MinRequests:      ai.Breaker.MinRequests,
			},
		},
		Logging: Logging{
			Level:      "info",
			Format:     "json",
			MaxSize:    50,
			MaxAge:     14,
			MaxBackups: 5,
			Compress:   true,
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "mindcanvas",
			Path:      "/metrics",
		},
		Tracing: Tracing{
			Endpoint:    "localhost:4317",
			Insecure:    true,
			ServiceName: "mindcanvas",
			SampleRate:  1,
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			MaxAge:         300,
		},
	}
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Production, Test:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxRequestSize <= 0 {
		return fmt.Errorf("server.max_request_size must be positive")
	}
	if !c.Storage.Ephemeral && strings.TrimSpace(c.Storage.Dir) == "" {
		return fmt.Errorf("storage.dir is required unless storage.ephemeral is set")
	}
	if _, err := valueobjects.ParseDirection(c.Layout.Direction); err != nil {
		return fmt.Errorf("layout.direction: %w", err)
	}
	if _, err := merge.ParsePolicy(c.Layout.MergePolicy); err != nil {
		return fmt.Errorf("layout.merge_policy: %w", err)
	}
	if c.AI.GenerateTemperature < 0 || c.AI.GenerateTemperature > 2 || c.AI.ExpandTemperature < 0 || c.AI.ExpandTemperature > 2 {
		return fmt.Errorf("ai temperatures must be between 0 and 2")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}
	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %g", c.Tracing.SampleRate)
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// Address is the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Direction returns the parsed default layout direction.
func (c *Config) Direction() valueobjects.Direction {
	d, err := valueobjects.ParseDirection(c.Layout.Direction)
	if err != nil {
		return valueobjects.DefaultDirection
	}
	return d
}

// MergePolicy returns the parsed merge policy.
func (c *Config) MergePolicy() merge.Policy {
	p, err := merge.ParsePolicy(c.Layout.MergePolicy)
	if err != nil {
		return merge.PolicyOverwrite
	}
	return p
}

// GeminiConfig converts the AI section for the client.
func (c *Config) GeminiConfig() gemini.Config {
	return gemini.Config{
		APIKey:              c.AI.APIKey,
		Model:               c.AI.Model,
		BaseURL:             c.AI.BaseURL,
		Timeout:             c.AI.Timeout,
		GenerateTemperature: c.AI.GenerateTemperature,
		ExpandTemperature:   c.AI.ExpandTemperature,
		MaxGenerateContext:  c.AI.MaxGenerateContext,
		MaxExpandContext:    c.AI.MaxExpandContext,
		Breaker: gemini.BreakerConfig{
			MaxRequests:      c.AI.Breaker.MaxRequests,
			Interval:         c.AI.Breaker.Interval,
			Timeout:          c.AI.Breaker.Timeout,
			FailureThreshold: c.AI.Breaker.FailureThreshold,
			MinRequests:      c.AI.Breaker.MinRequests,
		},
	}
}
