package http

import (
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) createProject(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithDetail(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File too large. Limit is %d bytes.", tooLarge.Limit))
			return
		}
		abortWithDetail(c, http.StatusBadRequest, "A PDF file must be uploaded in the 'file' field.")
		return
	}
	if !domain.IsPDFFilename(header.Filename) {
		abortWithDetail(c, http.StatusBadRequest, "Invalid file type. Only PDF files are allowed.")
		return
	}

	f, err := header.Open()
	if err != nil {
		abortWithError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		abortWithError(c, fmt.Errorf("read upload: %w", err))
		return
	}

	result, err := s.ports.Projects.Create(c.Request.Context(), header.Filename, data)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Project)
}

func (s *Server) listProjects(c *gin.Context) {
	projects, err := s.ports.Projects.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) getProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	project, err := s.ports.Projects.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, notFoundAs(err, "Project not found"))
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) deleteProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	if err := s.ports.Projects.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, notFoundAs(err, "Project not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listPages(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	pages, err := s.ports.Projects.Pages(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, notFoundAs(err, "Project not found"))
		return
	}
	if pages == nil {
		pages = []domain.Page{}
	}
	c.JSON(http.StatusOK, pages)
}

func (s *Server) pagePDF(c *gin.Context) {
	id, n, ok := pageRef(c)
	if !ok {
		return
	}
	data, err := s.ports.Projects.PagePDF(c.Request.Context(), id, n)
	if err != nil {
		abortWithError(c, pageError(err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"project-%d-page-%d.pdf\"", id, n))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (s *Server) pageText(c *gin.Context) {
	id, n, ok := pageRef(c)
	if !ok {
		return
	}
	page, err := s.ports.Projects.Page(c.Request.Context(), id, n)
	if err != nil {
		abortWithError(c, pageError(err))
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) generateForm(c *gin.Context) {
	id, n, ok := pageRef(c)
	if !ok {
		return
	}
	result, err := s.ports.Forms.GetOrGenerate(c.Request.Context(), id, n)
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			abortWithDetail(c, http.StatusInternalServerError, fmt.Sprintf("LLM not configured: %v", err))
			return
		}
		abortWithError(c, pageError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) formHTML(c *gin.Context) {
	id, n, ok := pageRef(c)
	if !ok {
		return
	}
	content, err := s.ports.Forms.HTML(c.Request.Context(), id, n)
	if err != nil {
		if errors.Is(err, domain.ErrFormNotGenerated) {
			abortWithDetail(c, http.StatusNotFound, notGeneratedDetail(id, n))
			return
		}
		abortWithError(c, pageError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"html_content": content})
}

func (s *Server) htmlView(c *gin.Context) {
	id, n, ok := pageRef(c)
	if !ok {
		return
	}
	doc, err := s.ports.Forms.View(c.Request.Context(), id, n)
	if err != nil {
		status := statusFor(err)
		msg := pageError(err).Error()
		if errors.Is(err, domain.ErrFormNotGenerated) {
			msg = notGeneratedDetail(id, n)
		}
		c.Data(status, "text/html; charset=utf-8", []byte(errorPage(status, msg)))
		c.Abort()
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}

func (s *Server) generateAll(c *gin.Context) {
	raw := c.Query("project_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("Invalid project_id %q.", raw))
		return
	}
	report, err := s.ports.Bulk.Dispatch(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, notFoundAs(err, "Project not found"))
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) batchStatus(c *gin.Context) {
	status, err := s.ports.Bulk.Status(c.Param("batch_id"))
	if err != nil {
		abortWithError(c, notFoundAs(err, "Batch not found"))
		return
	}
	c.JSON(http.StatusOK, status)
}

// projectID parses :id, writing a 400 on failure.
func projectID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("Invalid project id %q.", c.Param("id")))
		return 0, false
	}
	return id, true
}

// pageRef parses :id and :n.
func pageRef(c *gin.Context) (int64, int, bool) {
	id, ok := projectID(c)
	if !ok {
		return 0, 0, false
	}
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("Invalid page number %q.", c.Param("n")))
		return 0, 0, false
	}
	return id, n, true
}

// detailError keeps the status class of err but replaces its message.
type detailError struct {
	detail string
	err    error
}

func (e *detailError) Error() string { return e.detail }
func (e *detailError) Unwrap() error { return e.err }

// notFoundAs replaces the message of a not-found error.
func notFoundAs(err error, detail string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return &detailError{detail: detail, err: err}
	}
	return err
}

// pageError words page lookups the way clients expect.
func pageError(err error) error {
	var outOfRange *domain.PageOutOfRangeError
	if errors.As(err, &outOfRange) {
		return &detailError{
			detail: fmt.Sprintf("Page number %d out of range. PDF has %d pages.", outOfRange.Page, outOfRange.Total),
			err:    err,
		}
	}
	return notFoundAs(err, "Page not found")
}

func notGeneratedDetail(projectID int64, n int) string {
	return fmt.Sprintf("HTML form for page %d has not been generated yet. "+
		"Use the POST /projects/%d/pages/%d/form/generate endpoint to create it.", n, projectID, n)
}

func errorPage(status int, msg string) string {
	title := html.EscapeString(http.StatusText(status))
	return fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n"+
		"<body>\n<h1>%d %s</h1>\n<p>%s</p>\n</body>\n</html>\n", title, status, title, html.EscapeString(msg))
}
