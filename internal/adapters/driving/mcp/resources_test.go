package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

func TestParsePageURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		suffix   string
		wantID   int64
		wantPage int
		wantOK   bool
	}{
		{"valid text uri", "pageform://projects/12/pages/3/text", "/text", 12, 3, true},
		{"valid form uri", "pageform://projects/1/pages/10/form", "/form", 1, 10, true},
		{"wrong suffix", "pageform://projects/1/pages/10/form", "/text", 0, 0, false},
		{"wrong scheme", "other://projects/1/pages/1/text", "/text", 0, 0, false},
		{"non-numeric project", "pageform://projects/x/pages/1/text", "/text", 0, 0, false},
		{"non-numeric page", "pageform://projects/1/pages/y/text", "/text", 0, 0, false},
		{"missing pages segment", "pageform://projects/1/1/text", "/text", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, page, ok := parsePageURI(tt.uri, tt.suffix)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantPage, page)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleProjectsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns projects", func(t *testing.T) {
		projects := &mockProjectService{projects: []domain.Project{{ID: 4, Name: "tax.pdf", TotalPages: 2}}}
		server := newTestServer(t, projects, &mockFormService{}, nil)

		result, err := server.handleProjectsResource(ctx, makeReadResourceRequest("pageform://projects"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "tax.pdf")
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		projects := &mockProjectService{err: errors.New("database error")}
		server := newTestServer(t, projects, &mockFormService{}, nil)

		_, err := server.handleProjectsResource(ctx, makeReadResourceRequest("pageform://projects"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
	})
}

func TestServer_handlePageTextResource(t *testing.T) {
	projects := &mockProjectService{page: &domain.Page{PageNumber: 1, Text: "body"}}
	server := newTestServer(t, projects, &mockFormService{}, nil)

	result, err := server.handlePageTextResource(context.Background(),
		makeReadResourceRequest("pageform://projects/1/pages/1/text"))
	require.NoError(t, err)
	assert.Equal(t, "body", result.Contents[0].Text)

	_, err = server.handlePageTextResource(context.Background(), makeReadResourceRequest("pageform://bad"))
	assert.Error(t, err)
}

func TestServer_handlePageFormResource(t *testing.T) {
	forms := &mockFormService{html: "<form/>"}
	server := newTestServer(t, &mockProjectService{}, forms, nil)

	result, err := server.handlePageFormResource(context.Background(),
		makeReadResourceRequest("pageform://projects/1/pages/2/form"))
	require.NoError(t, err)
	assert.Equal(t, "text/html", result.Contents[0].MIMEType)
	assert.Equal(t, "<form/>", result.Contents[0].Text)

	forms.err = domain.ErrFormNotGenerated
	_, err = server.handlePageFormResource(context.Background(),
		makeReadResourceRequest("pageform://projects/1/pages/2/form"))
	assert.Error(t, err)
}
