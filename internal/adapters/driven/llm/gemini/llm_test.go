package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	contents []*genai.Content
	model    string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func (f *fakeModels) Get(_ context.Context, model string, _ *genai.GetModelConfig) (*genai.Model, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &genai.Model{Name: "models/" + model}, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(text, genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestGenerateForm_StripsFences(t *testing.T) {
	fake := &fakeModels{resp: textResponse("```html\n<form id=\"f\"></form>\n```")}
	g := &FormGenerator{models: fake, model: DefaultModel}

	html, err := g.GenerateForm(context.Background(), []byte("%PDF-1.4"), "instruction")
	require.NoError(t, err)
	assert.Equal(t, `<form id="f"></form>`, html)

	assert.Equal(t, DefaultModel, fake.model)
	require.Len(t, fake.contents, 1)
	parts := fake.contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "application/pdf", parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte("%PDF-1.4"), parts[0].InlineData.Data)
	assert.Equal(t, "instruction", parts[1].Text)
}

func TestGenerateForm_Blocked(t *testing.T) {
	fake := &fakeModels{resp: &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
			BlockReason: genai.BlockedReasonSafety,
		},
	}}
	g := &FormGenerator{models: fake, model: DefaultModel}

	_, err := g.GenerateForm(context.Background(), []byte("%PDF"), "p")
	var blocked *domain.ContentBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, string(genai.BlockedReasonSafety), blocked.Reason)
}

func TestGenerateForm_APIError(t *testing.T) {
	fake := &fakeModels{err: genai.APIError{Code: http.StatusForbidden, Message: "API key not valid"}}
	g := &FormGenerator{models: fake, model: DefaultModel}

	_, err := g.GenerateForm(context.Background(), []byte("%PDF"), "p")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestGenerateForm_TransportError(t *testing.T) {
	fake := &fakeModels{err: errors.New("connection reset")}
	g := &FormGenerator{models: fake, model: DefaultModel}

	_, err := g.GenerateForm(context.Background(), []byte("%PDF"), "p")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestPing(t *testing.T) {
	g := &FormGenerator{models: &fakeModels{}, model: DefaultModel}
	assert.NoError(t, g.Ping(context.Background()))

	g.models = &fakeModels{err: genai.APIError{Code: http.StatusServiceUnavailable, Message: "down"}}
	assert.ErrorIs(t, g.Ping(context.Background()), domain.ErrUpstreamUnavailable)
}
