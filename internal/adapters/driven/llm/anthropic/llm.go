// Package anthropic provides an LLM service adapter using the Anthropic
// Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sermonindex/internal/core/domain"
	"github.com/custodia-labs/sermonindex/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = domain.DefaultLLMModel
	DefaultMaxTokens = domain.DefaultLLMMaxTokens
	DefaultTimeout   = 120 * time.Second

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"

	// pingMaxTokens keeps the key check as cheap as possible.
	pingMaxTokens = 10
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the LLM model to use (default: claude-sonnet-4-5-20250929).
	Model string

	// MaxTokens is used when a request does not set its own limit.
	MaxTokens int

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides chat completions using the Anthropic API.
type LLMService struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model     string            `json:"model"`
	Messages  []messagesMessage `json:"messages"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system,omitempty"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", domain.ErrCredentialsMissing)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Factory returns a driven.LLMFactory that builds services sharing cfg.
// The API key passed to the factory overrides cfg.APIKey.
func Factory(cfg Config) driven.LLMFactory {
	return func(apiKey string) driven.LLMService {
		c := cfg
		c.APIKey = apiKey
		svc, err := NewLLMService(c)
		if err != nil {
			return nil
		}
		return svc
	}
}

// Complete sends the system prompt and turns to /v1/messages.
func (s *LLMService) Complete(
	ctx context.Context,
	system string,
	turns []domain.ChatMessage,
	opts driven.CompletionOptions,
) (*domain.Completion, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("anthropic: %w: no messages", domain.ErrInvalidInput)
	}

	apiMessages := make([]messagesMessage, len(turns))
	for i, msg := range turns {
		apiMessages[i] = messagesMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	// Anthropic requires max_tokens to be set
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	msgResp, err := s.send(ctx, messagesRequest{
		Model:     s.model,
		Messages:  apiMessages,
		MaxTokens: maxTokens,
		System:    system,
	})
	if err != nil {
		return nil, err
	}

	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}

	return &domain.Completion{
		Text:         result.String(),
		InputTokens:  msgResp.Usage.InputTokens,
		OutputTokens: msgResp.Usage.OutputTokens,
	}, nil
}

// send posts one request and decodes the response.
func (s *LLMService) send(ctx context.Context, reqBody messagesRequest) (*messagesResponse, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/v1/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic: read response: %v", domain.ErrServiceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return nil, fmt.Errorf("%w: anthropic: decode response: %v", domain.ErrServiceUnavailable, err)
	}
	if msgResp.Error != nil {
		return nil, fmt.Errorf("%w: anthropic: %s", domain.ErrServiceUnavailable, msgResp.Error.Message)
	}
	return &msgResp, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key with a minimal completion.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.send(ctx, messagesRequest{
		Model:     s.model,
		Messages:  []messagesMessage{{Role: string(domain.ChatRoleUser), Content: "Hi"}},
		MaxTokens: pingMaxTokens,
	})
	return err
}

// Close releases resources.
func (s *LLMService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// statusError classifies a non-200 response. The body is kept for logs;
// callers show users only the category.
func statusError(status int, body []byte) error {
	var kind error
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = domain.ErrInvalidCredentials
	case http.StatusTooManyRequests:
		kind = domain.ErrRateLimited
	default:
		kind = domain.ErrServiceUnavailable
	}
	return fmt.Errorf("%w: anthropic returned status %d: %s", kind, status, bytes.TrimSpace(body))
}
