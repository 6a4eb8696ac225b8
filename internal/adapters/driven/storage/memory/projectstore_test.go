package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

func newTestProject(pages int) domain.NewProject {
	np := domain.NewProject{Name: "form.pdf", PDF: []byte("%PDF-1.4")}
	for i := 1; i <= pages; i++ {
		np.Pages = append(np.Pages, domain.NewPage{PageNumber: i, Text: "text"})
	}
	return np
}

func TestProjectStore_CreateAndGet(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	created, err := store.Create(ctx, newTestProject(3))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, 3, created.TotalPages)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "form.pdf", got.Name)
	assert.Equal(t, []byte("%PDF-1.4"), got.PDF)
}

func TestProjectStore_Get_NotFound(t *testing.T) {
	store := NewProjectStore()

	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectStore_List_NewestFirstWithoutPDF(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	_, err := store.Create(ctx, newTestProject(1))
	require.NoError(t, err)
	_, err = store.Create(ctx, newTestProject(1))
	require.NoError(t, err)

	projects, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, int64(2), projects[0].ID)
	assert.Nil(t, projects[0].PDF)
}

func TestProjectStore_Delete_CascadesPages(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	created, err := store.Create(ctx, newTestProject(4))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))

	_, err = store.ListPages(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetPage(ctx, created.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestProjectStore_ListPages_Ordered(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	np := newTestProject(0)
	np.Pages = []domain.NewPage{{PageNumber: 3}, {PageNumber: 1}, {PageNumber: 2}}
	created, err := store.Create(ctx, np)
	require.NoError(t, err)

	pages, err := store.ListPages(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, p := range pages {
		assert.Equal(t, i+1, p.PageNumber)
	}
}

func TestProjectStore_SetFormHTML_WriteOnce(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	created, err := store.Create(ctx, newTestProject(1))
	require.NoError(t, err)

	written, err := store.SetFormHTML(ctx, created.ID, 1, "<p>first</p>")
	require.NoError(t, err)
	assert.True(t, written)

	written, err = store.SetFormHTML(ctx, created.ID, 1, "<p>second</p>")
	require.NoError(t, err)
	assert.False(t, written)

	page, err := store.GetPage(ctx, created.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, page.FormHTML)
	assert.Equal(t, "<p>first</p>", *page.FormHTML)
}

func TestProjectStore_SetFormHTML_MissingPage(t *testing.T) {
	store := NewProjectStore()

	_, err := store.SetFormHTML(context.Background(), 1, 1, "<p></p>")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectStore_ClearFormHTML(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	created, err := store.Create(ctx, newTestProject(1))
	require.NoError(t, err)
	_, err = store.SetFormHTML(ctx, created.ID, 1, "<p>old</p>")
	require.NoError(t, err)

	require.NoError(t, store.ClearFormHTML(ctx, created.ID, 1))

	written, err := store.SetFormHTML(ctx, created.ID, 1, "<p>new</p>")
	require.NoError(t, err)
	assert.True(t, written)
}

func TestProjectStore_GetPage_ReturnsCopy(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	created, err := store.Create(ctx, newTestProject(1))
	require.NoError(t, err)
	_, err = store.SetFormHTML(ctx, created.ID, 1, "<p>kept</p>")
	require.NoError(t, err)

	page, err := store.GetPage(ctx, created.ID, 1)
	require.NoError(t, err)
	*page.FormHTML = "mutated"

	again, err := store.GetPage(ctx, created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "<p>kept</p>", *again.FormHTML)
}

func TestProjectStore_SetFormHTML_ConcurrentSingleWinner(t *testing.T) {
	store := NewProjectStore()
	ctx := context.Background()

	created, err := store.Create(ctx, newTestProject(1))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			written, err := store.SetFormHTML(ctx, created.ID, 1, "<p>x</p>")
			if err == nil && written {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestConfigStore(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.provider", "gemini"))
	require.NoError(t, store.Set("bulk.workers", 4))
	require.NoError(t, store.Set("ratio", 2.0))

	assert.Equal(t, "gemini", store.GetString("llm.provider"))
	assert.Equal(t, 4, store.GetInt("bulk.workers"))
	assert.Equal(t, 2, store.GetInt("ratio"))
	assert.Equal(t, "", store.GetString("bulk.workers"))
	assert.Equal(t, 0, store.GetInt("missing"))

	require.NoError(t, store.Delete("llm.provider"))
	_, ok := store.Get("llm.provider")
	assert.False(t, ok)
	assert.Equal(t, ":memory:", store.Path())
}
