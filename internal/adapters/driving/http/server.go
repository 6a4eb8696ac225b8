package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/pageform/internal/core/ports/driving"
	"github.com/custodia-labs/pageform/internal/logger"
)

// DefaultMaxUploadBytes bounds an uploaded PDF when Options leaves it unset.
const DefaultMaxUploadBytes int64 = 50 << 20

const shutdownTimeout = 10 * time.Second

// Ports are the core services the API drives.
type Ports struct {
	Projects driving.ProjectService
	Forms    driving.FormService
	Bulk     driving.BulkDispatcher
}

// Options tunes the server.
type Options struct {
	// MaxUploadBytes caps the request body of POST /projects/.
	MaxUploadBytes int64
}

// Server serves the REST API.
type Server struct {
	ports  Ports
	opts   Options
	engine *gin.Engine
}

// NewServer builds the gin engine and registers every route.
func NewServer(ports Ports, opts Options) (*Server, error) {
	if ports.Projects == nil || ports.Forms == nil || ports.Bulk == nil {
		return nil, errors.New("http server requires project, form and bulk services")
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}

	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{ports: ports, opts: opts, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/healthz", s.health)

	projects := r.Group("/projects")
	projects.POST("/", limitBody(s.opts.MaxUploadBytes), s.createProject)
	projects.GET("/", s.listProjects)

	// Static segments take precedence over :id.
	projects.GET("/generate-all-forms/", s.generateAll)
	projects.GET("/generate-all-forms/:batch_id", s.batchStatus)

	projects.GET("/:id", s.getProject)
	projects.DELETE("/:id", s.deleteProject)
	projects.GET("/:id/pages/", s.listPages)

	page := projects.Group("/:id/pages/:n")
	page.GET("/pdf", s.pagePDF)
	page.GET("/text", s.pageText)
	page.POST("/form/generate", s.generateForm)
	page.GET("/form/html", s.formHTML)
	page.GET("/html_view", s.htmlView)
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
