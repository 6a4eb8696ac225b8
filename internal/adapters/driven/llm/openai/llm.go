// Package openai provides a form generator using the OpenAI Chat
// Completions API. Pages are sent as inline file parts.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/pageform/internal/adapters/driven/llm"
	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
)

// Ensure FormGenerator implements the interface.
var _ driven.FormGenerator = (*FormGenerator)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
	serviceName    = "openai"
	pageFilename   = "page.pdf"
)

// Config holds configuration for the OpenAI form generator.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for compatible APIs.
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// FormGenerator generates forms using the OpenAI API.
type FormGenerator struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type string    `json:"type"`
	Text string    `json:"text,omitempty"`
	File *filePart `json:"file,omitempty"`
}

type filePart struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New creates an OpenAI form generator.
func New(cfg Config) (*FormGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: API key is required", domain.ErrLLMUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &FormGenerator{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// GenerateForm sends the page as a data URL file part followed by the prompt.
func (g *FormGenerator) GenerateForm(ctx context.Context, pagePDF []byte, prompt string) (string, error) {
	dataURL := "data:" + llm.PDFMediaType + ";base64," + base64.StdEncoding.EncodeToString(pagePDF)
	reqBody := chatCompletionRequest{
		Model: g.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "file", File: &filePart{Filename: pageFilename, FileData: dataURL}},
				{Type: "text", Text: prompt},
			},
		}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", llm.TransportError(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.TransportError(serviceName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", llm.StatusError(serviceName, resp.StatusCode, body)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", &domain.UpstreamStatusError{Service: serviceName, StatusCode: resp.StatusCode, Body: chatResp.Error.Message}
	}
	if len(chatResp.Choices) == 0 {
		return "", &domain.ContentBlockedError{Reason: "no choices returned"}
	}

	choice := chatResp.Choices[0]
	reason := choice.FinishReason
	if choice.Message.Refusal != "" {
		reason = choice.Message.Refusal
	}
	return llm.Finish(choice.Message.Content, reason)
}

// ModelName returns the name of the model being used.
func (g *FormGenerator) ModelName() string {
	return g.model
}

// Ping fetches the configured model to verify the key.
func (g *FormGenerator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/models/"+g.model, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return llm.TransportError(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return llm.StatusError(serviceName, resp.StatusCode, body)
	}
	return nil
}

// Close releases resources.
func (g *FormGenerator) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
