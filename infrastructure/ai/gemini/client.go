// Package gemini implements the graph generator on the Gemini
// generateContent REST API with structured JSON output.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kaptinlin/jsonschema"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"mindcanvas/application/ports"
	"mindcanvas/domain/core/entities"
	"mindcanvas/pkg/errors"
)

const serviceName = "gemini"

// Client calls the Gemini API.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	shape   *jsonschema.Schema
	logger  *zap.Logger
}

var _ ports.GraphGenerator = (*Client)(nil)

// NewClient validates cfg and builds a client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.NewValidationError("gemini API key is required")
	}
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Breaker.MinRequests == 0 {
		cfg.Breaker = defaults.Breaker
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	shape, err := compileShapeSchema()
	if err != nil {
		return nil, fmt.Errorf("compile graph schema: %w", err)
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		shape:  shape,
		logger: logger.Named(serviceName),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.Breaker.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.Breaker.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up says nothing about the API's health.
			return err == nil || stderrors.Is(err, context.Canceled)
		},
	})
	return c, nil
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Generate builds a concept graph summarising text.
func (c *Client) Generate(ctx context.Context, text string) (*entities.ConceptGraph, error) {
	prompt := generatePrompt(text, c.cfg.MaxGenerateContext)
	return c.call(ctx, "generate", generateInstruction, prompt, c.cfg.GenerateTemperature)
}

// Expand asks for new nodes and edges around the selected concepts.
func (c *Client) Expand(ctx context.Context, req ports.ExpandRequest) (*entities.ConceptGraph, error) {
	prompt, err := expandPrompt(req, c.cfg.MaxExpandContext)
	if err != nil {
		return nil, errors.NewInternalError("build expand prompt").WithCause(err)
	}
	return c.call(ctx, "expand", expandInstruction, prompt, c.cfg.ExpandTemperature)
}

func (c *Client) call(ctx context.Context, op, instruction, prompt string, temperature float64) (*entities.ConceptGraph, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generateContent(ctx, instruction, prompt, temperature)
	})
	if err != nil {
		c.logger.Error("Gemini request failed",
			zap.String("operation", op),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, c.classify(ctx, op, err)
	}

	text := result.(string)
	graph, repaired, err := parseGraph(text, c.shape)
	if err != nil {
		c.logger.Error("Unusable Gemini response",
			zap.String("operation", op),
			zap.Int("responseBytes", len(text)),
			zap.Error(err))
		return nil, errors.NewExternalError(serviceName, err)
	}
	if repaired {
		c.logger.Warn("Repaired malformed JSON from Gemini", zap.String("operation", op))
	}

	c.logger.Info("Gemini graph received",
		zap.String("operation", op),
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("edges", len(graph.Edges)),
		zap.Duration("duration", time.Since(start)))
	return graph, nil
}

func (c *Client) classify(ctx context.Context, op string, err error) error {
	switch {
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return errors.NewUnavailableError(serviceName).WithCause(err)
	case stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.NewTimeoutError(serviceName + " " + op).WithCause(err)
	case stderrors.Is(err, context.Canceled):
		return err
	default:
		return errors.NewExternalError(serviceName, err)
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
	Temperature      float64        `json:"temperature"`
}

type generateRequest struct {
	SystemInstruction content          `json:"systemInstruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generateContent performs one request and returns the candidate text.
func (c *Client) generateContent(ctx context.Context, instruction, prompt string, temperature float64) (string, error) {
	body, err := json.Marshal(generateRequest{
		SystemInstruction: content{Parts: []part{{Text: instruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
			Temperature:      temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini %s (%d): %s", apiErr.Error.Status, resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", decoded.PromptFeedback.BlockReason)
	}
	if len(decoded.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}
