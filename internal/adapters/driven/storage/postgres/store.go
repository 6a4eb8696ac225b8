// Package postgres provides a driven.ProjectStore backed by PostgreSQL
// through the pgx driver. It is selected when a database URL is configured.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/custodia-labs/pageform/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
	"github.com/custodia-labs/pageform/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ProjectStore = (*Store)(nil)

const pingTimeout = 5 * time.Second

// Store is a PostgreSQL-backed project store.
type Store struct {
	db *sql.DB
}

// Open connects to dsn, verifies the connection and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: database URL is empty", domain.ErrInvalidInput)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug("postgres store connected")
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies pending migrations under an advisory lock so that
// concurrent servers do not race.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	const lockKey = 7401_2024
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", lockKey); err != nil {
		return fmt.Errorf("acquiring migration lock: %w", err)
	}
	defer conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", lockKey) //nolint:errcheck

	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	if err := conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= currentVersion {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}
	return nil
}

// Create inserts the project and its pages in a single transaction.
func (s *Store) Create(ctx context.Context, np domain.NewProject) (*domain.Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	project := domain.Project{
		Name:          np.Name,
		PDF:           np.PDF,
		TotalPages:    len(np.Pages),
		ChatSessionID: np.ChatSessionID,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO projects (name, pdf_file, total_pages, chat_session_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, np.Name, np.PDF, len(np.Pages), nullString(np.ChatSessionID)).Scan(&project.ID, &project.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting project: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pages (project_id, page_number, text_content, language)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range np.Pages {
		// Postgres TEXT cannot hold NUL bytes, which some extractors emit.
		text := strings.ReplaceAll(p.Text, "\x00", "")
		if _, err := stmt.ExecContext(ctx, project.ID, p.PageNumber, text, p.Language); err != nil {
			return nil, fmt.Errorf("inserting page %d: %w", p.PageNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing project: %w", err)
	}
	project.CreatedAt = project.CreatedAt.UTC()
	return &project, nil
}

// Get retrieves a project including its PDF.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Project, error) {
	var p domain.Project
	var chatID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, pdf_file, total_pages, chat_session_id, created_at
		FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.PDF, &p.TotalPages, &chatID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.ChatSessionID = stringPtr(chatID)
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// List returns all projects newest first, without PDF bytes.
func (s *Store) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, total_pages, chat_session_id, created_at
		FROM projects
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		var p domain.Project
		var chatID sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.TotalPages, &chatID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p.ChatSessionID = stringPtr(chatID)
		p.CreatedAt = p.CreatedAt.UTC()
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Delete removes a project and, by cascade, its pages.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireRow(res)
}

// ListPages returns the pages of a project ordered by page number.
func (s *Store) ListPages(ctx context.Context, projectID int64) ([]domain.Page, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)", projectID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking project: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, page_number, text_content, language, generated_form_html
		FROM pages WHERE project_id = $1
		ORDER BY page_number
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	pages := []domain.Page{}
	for rows.Next() {
		var p domain.Page
		var form sql.NullString
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.PageNumber, &p.Text, &p.Language, &form); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		p.FormHTML = stringPtr(form)
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// GetPage returns a single page.
func (s *Store) GetPage(ctx context.Context, projectID int64, pageNumber int) (*domain.Page, error) {
	var p domain.Page
	var form sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, page_number, text_content, language, generated_form_html
		FROM pages WHERE project_id = $1 AND page_number = $2
	`, projectID, pageNumber).Scan(&p.ID, &p.ProjectID, &p.PageNumber, &p.Text, &p.Language, &form)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning page: %w", err)
	}
	p.FormHTML = stringPtr(form)
	return &p, nil
}

// SetFormHTML stores html only when the page has no form yet.
func (s *Store) SetFormHTML(ctx context.Context, projectID int64, pageNumber int, html string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pages SET generated_form_html = $1
		WHERE project_id = $2 AND page_number = $3 AND generated_form_html IS NULL
	`, html, projectID, pageNumber)
	if err != nil {
		return false, fmt.Errorf("storing form: %w", err)
	}
	if err := requireRow(res); err == nil {
		return true, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	if _, err := s.GetPage(ctx, projectID, pageNumber); err != nil {
		return false, err
	}
	return false, nil
}

// ClearFormHTML drops the cached form of a page.
func (s *Store) ClearFormHTML(ctx context.Context, projectID int64, pageNumber int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pages SET generated_form_html = NULL
		WHERE project_id = $1 AND page_number = $2
	`, projectID, pageNumber)
	if err != nil {
		return fmt.Errorf("clearing form: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
