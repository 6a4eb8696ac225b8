package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *FormGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "gpt-test"})
	require.NoError(t, err)
	return g
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{Model: "gpt-test"})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestGenerateForm_SendsFilePart(t *testing.T) {
	var got chatCompletionRequest
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"<form>page</form>"},"finish_reason":"stop"}]}`))
	})

	html, err := g.GenerateForm(context.Background(), []byte("%PDF-1.7"), "convert")
	require.NoError(t, err)
	assert.Equal(t, "<form>page</form>", html)

	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 1)
	parts := got.Messages[0].Content
	require.Len(t, parts, 2)
	assert.Equal(t, "file", parts[0].Type)
	assert.True(t, strings.HasPrefix(parts[0].File.FileData, "data:application/pdf;base64,"))
	assert.Equal(t, "convert", parts[1].Text)
}

func TestGenerateForm_Refusal(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"","refusal":"cannot help"},"finish_reason":"stop"}]}`))
	})

	_, err := g.GenerateForm(context.Background(), []byte("%PDF"), "p")
	var blocked *domain.ContentBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "cannot help", blocked.Reason)
}

func TestGenerateForm_NoChoices(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := g.GenerateForm(context.Background(), []byte("%PDF"), "p")
	assert.ErrorIs(t, err, domain.ErrContentBlocked)
}

func TestGenerateForm_Unauthorized(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	})

	_, err := g.GenerateForm(context.Background(), []byte("%PDF"), "p")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestGenerateForm_Unreachable(t *testing.T) {
	g, err := New(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = g.GenerateForm(context.Background(), []byte("%PDF"), "p")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestPing(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gpt-test", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"gpt-test"}`))
	})
	assert.NoError(t, g.Ping(context.Background()))
	assert.NoError(t, g.Close())
}
