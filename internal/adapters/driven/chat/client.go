// Package chat provides a client for the external chat service that holds
// a conversation for each project.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
	"github.com/custodia-labs/pageform/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.ChatClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8090/chat"
	DefaultTimeout = 30 * time.Second
	serviceName    = "chat service"
)

// Config holds configuration for the chat client.
type Config struct {
	// BaseURL is the chat API root (default: http://localhost:8090/chat).
	BaseURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Client calls the chat service over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a chat client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

type newSessionResponse struct {
	ID json.RawMessage `json:"id"`
}

// NewSession opens a chat session and returns its identifier.
func (c *Client) NewSession(ctx context.Context) (domain.SessionOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/new", http.NoBody)
	if err != nil {
		return domain.SessionOutcome{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.SessionOutcome{}, fmt.Errorf("%s (new session): %w: %w", serviceName, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SessionOutcome{}, fmt.Errorf("%s (new session): %w: %w", serviceName, domain.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.SessionOutcome{}, &domain.UpstreamStatusError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var out newSessionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.SessionOutcome{}, fmt.Errorf("%w: decode chat session: %w", domain.ErrInternal, err)
	}
	id := sessionID(out.ID)
	if id == "" {
		return domain.SessionOutcome{}, fmt.Errorf("%w: failed to create chat session: id not in response", domain.ErrInternal)
	}

	logger.Debug("chat session created: %s", id)
	return domain.SessionOutcome{SessionID: id}, nil
}

// sessionID accepts both string and numeric ids.
func sessionID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// UploadPDF posts the document with a note to the session. It never fails
// the caller; problems are reported in the outcome.
func (c *Client) UploadPDF(ctx context.Context, sessionID, filename string, pdf []byte, message string) domain.UploadOutcome {
	outcome := domain.UploadOutcome{SessionID: sessionID}
	if err := c.upload(ctx, sessionID, filename, pdf, message); err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Delivered = true
	return outcome
}

func (c *Client) upload(ctx context.Context, sessionID, filename string, pdf []byte, message string) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%s`, strconv.Quote(filename)))
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(pdf); err != nil {
		return err
	}
	if err := writer.WriteField("message", message); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	endpoint := c.baseURL + "/" + url.PathEscape(sessionID) + "/message"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s (upload): %w: %w", serviceName, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &domain.UpstreamStatusError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return nil
}
