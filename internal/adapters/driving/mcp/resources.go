package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "pageform://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "projects",
		Name:        "projects",
		Description: "All uploaded PDF projects",
		MIMEType:    "application/json",
	}, s.handleProjectsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/pages/{pageNumber}/text",
		Name:        "page-text",
		Description: "Extracted text of a page",
		MIMEType:    "text/plain",
	}, s.handlePageTextResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "projects/{projectId}/pages/{pageNumber}/form",
		Name:        "page-form",
		Description: "Cached HTML form of a page",
		MIMEType:    "text/html",
	}, s.handlePageFormResource)
}

func (s *Server) handleProjectsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	projects, err := s.ports.Projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	type projectInfo struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		TotalPages int    `json:"total_pages"`
	}
	infos := make([]projectInfo, len(projects))
	for i := range projects {
		infos[i] = projectInfo{ID: projects[i].ID, Name: projects[i].Name, TotalPages: projects[i].TotalPages}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling projects: %w", err)
	}
	return textResult(req.Params.URI, "application/json", string(data)), nil
}

func (s *Server) handlePageTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	projectID, pageNumber, ok := parsePageURI(req.Params.URI, "/text")
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	page, err := s.ports.Projects.Page(ctx, projectID, pageNumber)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return textResult(req.Params.URI, "text/plain", page.Text), nil
}

func (s *Server) handlePageFormResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	projectID, pageNumber, ok := parsePageURI(req.Params.URI, "/form")
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	html, err := s.ports.Forms.HTML(ctx, projectID, pageNumber)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return textResult(req.Params.URI, "text/html", html), nil
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}

// parsePageURI extracts ids from pageform://projects/{id}/pages/{n}{suffix}.
func parsePageURI(uri, suffix string) (int64, int, bool) {
	const prefix = uriScheme + "projects/"
	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return 0, 0, false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)

	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[1] != "pages" {
		return 0, 0, false
	}
	projectID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	pageNumber, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, false
	}
	return projectID, pageNumber, true
}
