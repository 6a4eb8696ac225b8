package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// ProjectSummary describes one project.
type ProjectSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	TotalPages int    `json:"total_pages"`
	CreatedAt  string `json:"created_at"`
}

// ListProjectsInput is the input schema for the list_projects tool.
type ListProjectsInput struct{}

// ListProjectsOutput is the output schema for the list_projects tool.
type ListProjectsOutput struct {
	Projects []ProjectSummary `json:"projects"`
	Count    int              `json:"count"`
}

// PageRef identifies a page.
type PageRef struct {
	ProjectID  int64 `json:"project_id" jsonschema:"the project id"`
	PageNumber int   `json:"page_number" jsonschema:"the 1-based page number"`
}

// ListPagesInput is the input schema for the list_pages tool.
type ListPagesInput struct {
	ProjectID int64 `json:"project_id" jsonschema:"the project id"`
}

// PageSummary describes one page without its text.
type PageSummary struct {
	PageNumber int    `json:"page_number"`
	Language   string `json:"language,omitempty"`
	HasForm    bool   `json:"has_form"`
	TextLength int    `json:"text_length"`
}

// ListPagesOutput is the output schema for the list_pages tool.
type ListPagesOutput struct {
	ProjectID int64         `json:"project_id"`
	Pages     []PageSummary `json:"pages"`
}

// PageTextOutput is the output schema for the get_page_text tool.
type PageTextOutput struct {
	PageNumber int    `json:"page_number"`
	Language   string `json:"language,omitempty"`
	Text       string `json:"text"`
}

// FormOutput is the output schema for the form tools.
type FormOutput struct {
	HTML   string            `json:"html_content"`
	Source string            `json:"source,omitempty"`
	Stats  *domain.FormStats `json:"stats,omitempty"`
}

// ClearFormOutput is the output schema for the clear_form tool.
type ClearFormOutput struct {
	Cleared bool `json:"cleared"`
}

// GenerateAllInput is the input schema for the generate_all_forms tool.
type GenerateAllInput struct {
	ProjectID int64 `json:"project_id" jsonschema:"the project whose pages should all get forms"`
}

// BatchStatusInput is the input schema for the batch_status tool.
type BatchStatusInput struct {
	BatchID string `json:"batch_id" jsonschema:"the batch id returned by generate_all_forms"`
}

// BatchOutput is the output schema for the bulk tools.
type BatchOutput struct {
	BatchID   string                  `json:"batch_id"`
	ProjectID int64                   `json:"project_id"`
	Scheduled int                     `json:"tasks_scheduled"`
	Completed int                     `json:"completed"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
	Done      bool                    `json:"done"`
	Results   []domain.PageTaskResult `json:"results,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_projects",
		Description: "List uploaded PDF projects, newest first",
	}, s.handleListProjects)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_pages",
		Description: "List the pages of a project and whether each has a generated form",
	}, s.handleListPages)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_page_text",
		Description: "Get the extracted text of a page",
	}, s.handlePageText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_form",
		Description: "Generate an editable HTML form for a page, or return the cached one",
	}, s.handleGenerateForm)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_form_html",
		Description: "Get the cached HTML form of a page without generating",
	}, s.handleFormHTML)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_form",
		Description: "Remove the cached form of a page so it is regenerated next time",
	}, s.handleClearForm)

	if s.ports.Bulk != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_all_forms",
			Description: "Schedule form generation for every page of a project",
		}, s.handleGenerateAll)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "batch_status",
			Description: "Report progress of a generate_all_forms batch",
		}, s.handleBatchStatus)
	}
}

func (s *Server) handleListProjects(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListProjectsInput,
) (*mcp.CallToolResult, ListProjectsOutput, error) {
	projects, err := s.ports.Projects.List(ctx)
	if err != nil {
		return nil, ListProjectsOutput{}, fmt.Errorf("listing projects: %w", err)
	}

	output := ListProjectsOutput{
		Projects: make([]ProjectSummary, len(projects)),
		Count:    len(projects),
	}
	for i := range projects {
		output.Projects[i] = ProjectSummary{
			ID:         projects[i].ID,
			Name:       projects[i].Name,
			TotalPages: projects[i].TotalPages,
			CreatedAt:  projects[i].CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return nil, output, nil
}

func (s *Server) handleListPages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListPagesInput,
) (*mcp.CallToolResult, ListPagesOutput, error) {
	pages, err := s.ports.Projects.Pages(ctx, input.ProjectID)
	if err != nil {
		return nil, ListPagesOutput{}, fmt.Errorf("listing pages of project %d: %w", input.ProjectID, err)
	}

	output := ListPagesOutput{ProjectID: input.ProjectID, Pages: make([]PageSummary, len(pages))}
	for i := range pages {
		output.Pages[i] = PageSummary{
			PageNumber: pages[i].PageNumber,
			Language:   pages[i].Language,
			HasForm:    pages[i].HasForm(),
			TextLength: len(pages[i].Text),
		}
	}
	return nil, output, nil
}

func (s *Server) handlePageText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PageRef,
) (*mcp.CallToolResult, PageTextOutput, error) {
	page, err := s.ports.Projects.Page(ctx, input.ProjectID, input.PageNumber)
	if err != nil {
		return nil, PageTextOutput{}, fmt.Errorf("getting page %d: %w", input.PageNumber, err)
	}
	return nil, PageTextOutput{PageNumber: page.PageNumber, Language: page.Language, Text: page.Text}, nil
}

func (s *Server) handleGenerateForm(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PageRef,
) (*mcp.CallToolResult, FormOutput, error) {
	result, err := s.ports.Forms.GetOrGenerate(ctx, input.ProjectID, input.PageNumber)
	if err != nil {
		return nil, FormOutput{}, fmt.Errorf("generating form for page %d: %w", input.PageNumber, err)
	}
	return nil, FormOutput{HTML: result.HTML, Source: result.Source.String(), Stats: result.Stats}, nil
}

func (s *Server) handleFormHTML(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PageRef,
) (*mcp.CallToolResult, FormOutput, error) {
	html, err := s.ports.Forms.HTML(ctx, input.ProjectID, input.PageNumber)
	if errors.Is(err, domain.ErrFormNotGenerated) {
		return nil, FormOutput{}, fmt.Errorf("page %d has no form yet, call generate_form first", input.PageNumber)
	}
	if err != nil {
		return nil, FormOutput{}, fmt.Errorf("getting form for page %d: %w", input.PageNumber, err)
	}
	return nil, FormOutput{HTML: html, Source: domain.FormSourceCache.String()}, nil
}

func (s *Server) handleClearForm(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PageRef,
) (*mcp.CallToolResult, ClearFormOutput, error) {
	if err := s.ports.Forms.Clear(ctx, input.ProjectID, input.PageNumber); err != nil {
		return nil, ClearFormOutput{}, fmt.Errorf("clearing form for page %d: %w", input.PageNumber, err)
	}
	return nil, ClearFormOutput{Cleared: true}, nil
}

func (s *Server) handleGenerateAll(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateAllInput,
) (*mcp.CallToolResult, BatchOutput, error) {
	report, err := s.ports.Bulk.Dispatch(ctx, input.ProjectID)
	if err != nil {
		return nil, BatchOutput{}, fmt.Errorf("scheduling project %d: %w", input.ProjectID, err)
	}
	return nil, BatchOutput{
		BatchID:   report.BatchID,
		ProjectID: report.ProjectID,
		Scheduled: report.Scheduled,
		Done:      report.Scheduled == 0,
	}, nil
}

func (s *Server) handleBatchStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input BatchStatusInput,
) (*mcp.CallToolResult, BatchOutput, error) {
	status, err := s.ports.Bulk.Status(input.BatchID)
	if err != nil {
		return nil, BatchOutput{}, err
	}
	return nil, BatchOutput{
		BatchID:   status.BatchID,
		ProjectID: status.ProjectID,
		Scheduled: status.Scheduled,
		Completed: status.Completed,
		Succeeded: status.Succeeded,
		Failed:    status.Failed,
		Done:      status.Done(),
		Results:   status.Results,
	}, nil
}
