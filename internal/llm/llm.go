// Package llm provides the inference collaborator: a thin chat contract
// over the Gemini API.
//
// Failures stay errors here; the session controller renders them to a
// user-visible string at the response boundary.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/prachya/gamesage/internal/memory"
)

// ErrMissingAPIKey indicates no Gemini API key was provided.
var ErrMissingAPIKey = errors.New("missing Gemini API key")

// fallbackResponse is returned when the model produces an empty
// candidate.
const fallbackResponse = "ขอโทษครับ ผมตอบคำถามนี้ไม่ได้ ลองถามใหม่อีกครั้งนะครับ"

// Config holds Client construction parameters.
type Config struct {
	APIKey      string
	ModelName   string
	Temperature float32
	MaxTokens   int
	Logger      *slog.Logger
}

// Client is a Gemini-backed chat client.
type Client struct {
	client      *genai.Client
	modelName   string
	temperature float32
	maxTokens   int32
	logger      *slog.Logger
}

// New creates a Client. The API key is required; everything else has a
// usable zero value.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.5-flash"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &Client{
		client:      client,
		modelName:   cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens), //nolint:gosec // bounded by config validation
		logger:      cfg.Logger,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.modelName
}

// Chat sends the ordered message sequence to the model and returns its
// text output. A leading system-role message becomes the system
// instruction.
func (c *Client) Chat(ctx context.Context, msgs []memory.Message) (string, error) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(msgs))

	for _, m := range msgs {
		switch m.Role {
		case memory.RoleSystem:
			system = genai.NewContentFromText(m.Content, genai.RoleUser)
		case memory.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	temp := c.temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       &temp,
		MaxOutputTokens:   c.maxTokens,
	}

	res, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		c.logger.Warn("model returned empty response", "model", c.modelName)
		return fallbackResponse, nil
	}
	return text, nil
}
