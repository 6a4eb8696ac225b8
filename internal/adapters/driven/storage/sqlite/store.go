package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pageform/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
	"github.com/custodia-labs/pageform/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ProjectStore = (*Store)(nil)

// DatabaseFile is the file name used inside the data directory.
const DatabaseFile = "pageform.db"

// Store is a SQLite-backed project store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database in dataDir.
// If dataDir is empty, defaults to ~/.pageform/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pageform", "data")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return Open(filepath.Join(dataDir, DatabaseFile))
}

// Open opens the database file at dbPath and applies pending migrations.
func Open(dbPath string) (*Store, error) {
	// Pragmas in the DSN apply to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug("sqlite store opened at %s", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
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
		// "001_projects.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// Create inserts the project and its pages in a single transaction.
func (s *Store) Create(ctx context.Context, np domain.NewProject) (*domain.Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO projects (name, pdf_file, total_pages, chat_session_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, np.Name, np.PDF, len(np.Pages), nullString(np.ChatSessionID), now)
	if err != nil {
		return nil, fmt.Errorf("inserting project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading project id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pages (project_id, page_number, text_content, language)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range np.Pages {
		if _, err := stmt.ExecContext(ctx, id, p.PageNumber, p.Text, p.Language); err != nil {
			return nil, fmt.Errorf("inserting page %d: %w", p.PageNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing project: %w", err)
	}

	return &domain.Project{
		ID:            id,
		Name:          np.Name,
		PDF:           np.PDF,
		TotalPages:    len(np.Pages),
		ChatSessionID: np.ChatSessionID,
		CreatedAt:     now,
	}, nil
}

// Get retrieves a project including its PDF.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, pdf_file, total_pages, chat_session_id, created_at
		FROM projects WHERE id = ?
	`, id)

	var p domain.Project
	var chatID sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&p.ID, &p.Name, &p.PDF, &p.TotalPages, &chatID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.ChatSessionID = stringPtr(chatID)
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
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
		var createdAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.TotalPages, &chatID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p.ChatSessionID = stringPtr(chatID)
		if createdAt.Valid {
			p.CreatedAt = createdAt.Time
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Delete removes a project. Pages go with it through ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPages returns the pages of a project ordered by page number.
func (s *Store) ListPages(ctx context.Context, projectID int64) ([]domain.Page, error) {
	if err := s.exists(ctx, projectID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, page_number, text_content, language, generated_form_html
		FROM pages WHERE project_id = ?
		ORDER BY page_number
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	pages := []domain.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// GetPage returns a single page.
func (s *Store) GetPage(ctx context.Context, projectID int64, pageNumber int) (*domain.Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, page_number, text_content, language, generated_form_html
		FROM pages WHERE project_id = ? AND page_number = ?
	`, projectID, pageNumber)

	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

// SetFormHTML stores html only when the page has no form yet.
func (s *Store) SetFormHTML(ctx context.Context, projectID int64, pageNumber int, html string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pages SET generated_form_html = ?
		WHERE project_id = ? AND page_number = ? AND generated_form_html IS NULL
	`, html, projectID, pageNumber)
	if err != nil {
		return false, fmt.Errorf("storing form: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storing form: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	// Nothing updated: either the form already exists or the page does not.
	if _, err := s.GetPage(ctx, projectID, pageNumber); err != nil {
		return false, err
	}
	return false, nil
}

// ClearFormHTML drops the cached form of a page.
func (s *Store) ClearFormHTML(ctx context.Context, projectID int64, pageNumber int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pages SET generated_form_html = NULL
		WHERE project_id = ? AND page_number = ?
	`, projectID, pageNumber)
	if err != nil {
		return fmt.Errorf("clearing form: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("clearing form: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) exists(ctx context.Context, projectID int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id = ?", projectID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking project: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*domain.Page, error) {
	var p domain.Page
	var form sql.NullString
	if err := row.Scan(&p.ID, &p.ProjectID, &p.PageNumber, &p.Text, &p.Language, &form); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning page: %w", err)
	}
	p.FormHTML = stringPtr(form)
	return &p, nil
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
