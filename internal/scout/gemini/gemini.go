// Package gemini implements scout.Generator on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sakif/pitchperfect/internal/apperror"
	"github.com/sakif/pitchperfect/internal/scout"
)

const collaborator = "scout generator"

// Client implements the scout.Generator interface using Gemini.
type Client struct {
	genai  *genai.Client
	config Config
	logger *slog.Logger
}

// New builds a Client. It returns an error when the key is empty.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	return newClient(ctx, cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

func newClient(ctx context.Context, cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	return &Client{
		genai:  gc,
		config: cfg,
		logger: logger,
	}, nil
}

// Generate asks the model for a report on s. An empty completion is not an
// error; the caller decides what to show for it.
func (c *Client) Generate(ctx context.Context, s scout.Stats) (string, error) {
	start := time.Now()

	resp, err := c.genai.Models.GenerateContent(ctx, c.config.Model, genai.Text(scout.Prompt(s)), nil)
	if err != nil {
		return "", apperror.CollaboratorUnavailable(collaborator, err)
	}

	c.logger.Debug("scout report generated",
		slog.String("model", c.config.Model),
		slog.Duration("duration", time.Since(start)),
	)

	return resp.Text(), nil
}
