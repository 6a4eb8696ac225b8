package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "pageform-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}
	return store, cleanup
}

// createTestProject inserts a project with the given page texts.
func createTestProject(t *testing.T, store *Store, name string, texts ...string) *domain.Project {
	t.Helper()

	np := domain.NewProject{Name: name, PDF: []byte("%PDF-1.4 " + name)}
	for i, text := range texts {
		np.Pages = append(np.Pages, domain.NewPage{PageNumber: i + 1, Text: text, Language: "en"})
	}
	project, err := store.Create(context.Background(), np)
	require.NoError(t, err)
	return project
}

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Equal(t, DatabaseFile, filepath.Base(store.Path()))
	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsRecorded(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	project := createTestProject(t, store, "keep.pdf", "one")
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep.pdf", got.Name)
}

// ==================== Project Tests ====================

func TestStore_CreateAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := "chat-1"
	created, err := store.Create(ctx, domain.NewProject{
		Name:          "form.pdf",
		PDF:           []byte("%PDF-1.7 bytes"),
		ChatSessionID: &session,
		Pages: []domain.NewPage{
			{PageNumber: 1, Text: "first"},
			{PageNumber: 2, Text: ""},
		},
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, 2, created.TotalPages)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "form.pdf", got.Name)
	assert.Equal(t, []byte("%PDF-1.7 bytes"), got.PDF)
	assert.Equal(t, 2, got.TotalPages)
	require.NotNil(t, got.ChatSessionID)
	assert.Equal(t, "chat-1", *got.ChatSessionID)
}

func TestStore_GetMissing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.Get(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_CreateIsAtomic(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	// Duplicate page numbers violate the unique constraint mid-insert.
	_, err := store.Create(ctx, domain.NewProject{
		Name: "broken.pdf",
		PDF:  []byte("%PDF"),
		Pages: []domain.NewPage{
			{PageNumber: 1, Text: "a"},
			{PageNumber: 1, Text: "b"},
		},
	})
	require.Error(t, err)

	projects, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	first := createTestProject(t, store, "a.pdf", "x")
	second := createTestProject(t, store, "b.pdf", "y", "z")

	projects, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, second.ID, projects[0].ID)
	assert.Equal(t, first.ID, projects[1].ID)
	assert.Nil(t, projects[0].PDF, "list omits PDF bytes")
	assert.Equal(t, 2, projects[0].TotalPages)
}

func TestStore_ListEmpty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	projects, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestStore_DeleteCascadesPages(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "gone.pdf", "a", "b")
	require.NoError(t, store.Delete(ctx, project.ID))

	_, err := store.Get(ctx, project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM pages WHERE project_id = ?", project.ID).Scan(&count))
	assert.Zero(t, count)

	assert.ErrorIs(t, store.Delete(ctx, project.ID), domain.ErrNotFound)
}

// ==================== Page Tests ====================

func TestStore_ListPages(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "p.pdf", "one", "two", "three")

	pages, err := store.ListPages(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, p := range pages {
		assert.Equal(t, i+1, p.PageNumber)
		assert.Equal(t, project.ID, p.ProjectID)
		assert.Equal(t, "en", p.Language)
		assert.Nil(t, p.FormHTML)
	}
	assert.Equal(t, "two", pages[1].Text)

	_, err = store.ListPages(ctx, 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_GetPage(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "p.pdf", "one", "two")

	page, err := store.GetPage(ctx, project.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "two", page.Text)

	_, err = store.GetPage(ctx, project.ID, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SetFormHTML_FirstWriteWins(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "p.pdf", "one")

	wrote, err := store.SetFormHTML(ctx, project.ID, 1, "<form>first</form>")
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = store.SetFormHTML(ctx, project.ID, 1, "<form>second</form>")
	require.NoError(t, err)
	assert.False(t, wrote)

	page, err := store.GetPage(ctx, project.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, page.FormHTML)
	assert.Equal(t, "<form>first</form>", *page.FormHTML)
}

func TestStore_SetFormHTML_MissingPage(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.SetFormHTML(context.Background(), 77, 1, "<form/>")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SetFormHTML_Concurrent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "p.pdf", "one")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		errs   []error
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wrote, err := store.SetFormHTML(ctx, project.ID, 1, "<form/>")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if wrote {
				wins++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, wins)
}

func TestStore_ClearFormHTML(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "p.pdf", "one")
	_, err := store.SetFormHTML(ctx, project.ID, 1, "<form/>")
	require.NoError(t, err)

	require.NoError(t, store.ClearFormHTML(ctx, project.ID, 1))
	page, err := store.GetPage(ctx, project.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, page.FormHTML)

	wrote, err := store.SetFormHTML(ctx, project.ID, 1, "<form>again</form>")
	require.NoError(t, err)
	assert.True(t, wrote)

	assert.ErrorIs(t, store.ClearFormHTML(ctx, project.ID, 9), domain.ErrNotFound)
}
