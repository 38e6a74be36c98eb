package gemini

import (
	"time"
)

// Config is resolved once at startup and passed to NewClient.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration

	GenerateTemperature float64
	ExpandTemperature   float64

	// MaxGenerateContext caps the characters of source text sent on generate.
	MaxGenerateContext int
	// MaxExpandContext caps the characters of source text sent on expand.
	MaxExpandContext int

	Breaker BreakerConfig
}

// BreakerConfig tunes the circuit breaker around the API.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig returns the stock settings without an API key.
func DefaultConfig() Config {
	return Config{
		Model:               "gemini-2.5-flash",
		BaseURL:             "https://generativelanguage.googleapis.com/v1beta",
		Timeout:             90 * time.Second,
		GenerateTemperature: 0.2,
		ExpandTemperature:   0.7,
		MaxGenerateContext:  30000,
		MaxExpandContext:    5000,
		Breaker: BreakerConfig{
			MaxRequests:      2,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 0.6,
			MinRequests:      3,
		},
	}
}
