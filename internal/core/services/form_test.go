package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pageform/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pageform/internal/core/domain"
)

func setupFormService(t *testing.T, gen *fakeGenerator, texts ...string) (*FormService, *memory.ProjectStore, int64) {
	t.Helper()
	store := memory.NewProjectStore()
	codec := &fakeCodec{}

	np := domain.NewProject{Name: "form.pdf", PDF: makePDF(texts...)}
	for i, text := range texts {
		np.Pages = append(np.Pages, domain.NewPage{PageNumber: i + 1, Text: text})
	}
	project, err := store.Create(context.Background(), np)
	require.NoError(t, err)

	var svc *FormService
	if gen == nil {
		svc = NewFormService(store, codec, nil, fakePrompts{})
	} else {
		svc = NewFormService(store, codec, gen, fakePrompts{})
	}
	return svc, store, project.ID
}

func TestFormService_GetOrGenerate_GeneratesThenCaches(t *testing.T) {
	gen := &fakeGenerator{}
	svc, _, id := setupFormService(t, gen, "p1", "p2")
	ctx := context.Background()

	first, err := svc.GetOrGenerate(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.FormSourceGenerated, first.Source)
	assert.Equal(t, "<form>p2|form_generation</form>", first.HTML)
	assert.Equal(t, "%PDFp2", string(gen.lastPDF))

	second, err := svc.GetOrGenerate(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.FormSourceCache, second.Source)
	assert.Equal(t, first.HTML, second.HTML)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestFormService_GetOrGenerate_PageNotFound(t *testing.T) {
	gen := &fakeGenerator{}
	svc, _, id := setupFormService(t, gen, "p1")

	_, err := svc.GetOrGenerate(context.Background(), id, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetOrGenerate(context.Background(), id+1, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, gen.calls.Load())
}

func TestFormService_GetOrGenerate_FailureLeavesPageUnset(t *testing.T) {
	gen := &fakeGenerator{err: &domain.ContentBlockedError{Reason: "RECITATION"}}
	svc, store, id := setupFormService(t, gen, "p1")
	ctx := context.Background()

	_, err := svc.GetOrGenerate(ctx, id, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrContentBlocked)
	assert.Contains(t, err.Error(), "RECITATION")

	page, err := store.GetPage(ctx, id, 1)
	require.NoError(t, err)
	assert.Nil(t, page.FormHTML)

	// A retry after the failure reaches the model again.
	gen.err = nil
	res, err := svc.GetOrGenerate(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.FormSourceGenerated, res.Source)
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestFormService_GetOrGenerate_NoGenerator(t *testing.T) {
	svc, _, id := setupFormService(t, nil, "p1")

	_, err := svc.GetOrGenerate(context.Background(), id, 1)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestFormService_GetOrGenerate_NoGeneratorServesCache(t *testing.T) {
	svc, store, id := setupFormService(t, nil, "p1")
	ctx := context.Background()
	_, err := store.SetFormHTML(ctx, id, 1, "<form>cached</form>")
	require.NoError(t, err)

	res, err := svc.GetOrGenerate(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.FormSourceCache, res.Source)
	assert.Equal(t, "<form>cached</form>", res.HTML)
}

func TestFormService_GetOrGenerate_ConcurrentCallsShareOneModelCall(t *testing.T) {
	gen := &fakeGenerator{delay: 50 * time.Millisecond}
	svc, _, id := setupFormService(t, gen, "p1")
	ctx := context.Background()

	const callers = 8
	results := make([]*domain.FormResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.GetOrGenerate(ctx, id, 1)
		}(i)
	}
	wg.Wait()

	generated := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].HTML, results[i].HTML)
		if results[i].Source == domain.FormSourceGenerated {
			generated++
		}
	}
	assert.Equal(t, 1, generated)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestFormService_GetOrGenerate_LostWriteReturnsStoredForm(t *testing.T) {
	gen := &fakeGenerator{delay: 20 * time.Millisecond, html: "<form>mine</form>"}
	svc, store, id := setupFormService(t, gen, "p1")
	ctx := context.Background()

	// Another writer stores a form while the model call is in flight.
	go func() {
		time.Sleep(5 * time.Millisecond)
		_, _ = store.SetFormHTML(ctx, id, 1, "<form>theirs</form>")
	}()

	res, err := svc.GetOrGenerate(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.FormSourceCache, res.Source)
	assert.Equal(t, "<form>theirs</form>", res.HTML)
}

func TestFormService_PromptVariant(t *testing.T) {
	gen := &fakeGenerator{}
	svc, _, id := setupFormService(t, gen, "p1")
	svc.SetPromptVariant(domain.PromptSignatures)
	svc.SetPromptVariant("unknown")

	res, err := svc.GetOrGenerate(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, "<form>p1|form_generation_signatures</form>", res.HTML)
}

func TestFormService_HTML(t *testing.T) {
	gen := &fakeGenerator{html: "<form>x</form>"}
	svc, _, id := setupFormService(t, gen, "p1")
	ctx := context.Background()

	_, err := svc.HTML(ctx, id, 1)
	assert.ErrorIs(t, err, domain.ErrFormNotGenerated)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetOrGenerate(ctx, id, 1)
	require.NoError(t, err)

	html, err := svc.HTML(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, "<form>x</form>", html)

	_, err = svc.HTML(ctx, id, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFormService_ViewAndStats(t *testing.T) {
	gen := &fakeGenerator{html: `<form><input name="a"><input name="b"></form>`}
	svc, _, id := setupFormService(t, gen, "p1")
	svc.SetInspector(fakeInspector{})
	ctx := context.Background()

	res, err := svc.GetOrGenerate(ctx, id, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Stats)
	assert.Equal(t, 2, res.Stats.Fields)

	view, err := svc.View(ctx, id, 1)
	require.NoError(t, err)
	assert.Contains(t, view, "<title>Project 1 - Page 1</title>")
	assert.Contains(t, view, res.HTML)
}

func TestFormService_Clear(t *testing.T) {
	gen := &fakeGenerator{}
	svc, _, id := setupFormService(t, gen, "p1")
	ctx := context.Background()

	_, err := svc.GetOrGenerate(ctx, id, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, id, 1))

	res, err := svc.GetOrGenerate(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.FormSourceGenerated, res.Source)
	assert.Equal(t, int32(2), gen.calls.Load())

	assert.ErrorIs(t, svc.Clear(ctx, id, 7), domain.ErrNotFound)
}

func TestFormService_GetOrGenerate_Timeout(t *testing.T) {
	gen := &fakeGenerator{delay: time.Second}
	svc, store, id := setupFormService(t, gen, "p1")
	svc.SetGenerateTimeout(20 * time.Millisecond)
	ctx := context.Background()

	_, err := svc.GetOrGenerate(ctx, id, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	page, err := store.GetPage(ctx, id, 1)
	require.NoError(t, err)
	assert.Nil(t, page.FormHTML)
}

func TestFormService_GetOrGenerate_FirstCallerCancelDoesNotFailOthers(t *testing.T) {
	gen := &fakeGenerator{delay: 200 * time.Millisecond}
	svc, store, id := setupFormService(t, gen, "p1")

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetOrGenerate(firstCtx, id, 1)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return gen.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		res *domain.FormResult
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := svc.GetOrGenerate(context.Background(), id, 1)
		second <- outcome{res, err}
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-firstErr, context.Canceled)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "<form>p1|form_generation</form>", got.res.HTML)
	assert.Equal(t, int32(1), gen.calls.Load())

	page, err := store.GetPage(context.Background(), id, 1)
	require.NoError(t, err)
	require.NotNil(t, page.FormHTML)
	assert.Equal(t, got.res.HTML, *page.FormHTML)
}

func TestFormService_GetOrGenerate_CancelledCallerStillStoresForm(t *testing.T) {
	gen := &fakeGenerator{delay: 50 * time.Millisecond}
	svc, store, id := setupFormService(t, gen, "p1")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := svc.GetOrGenerate(ctx, id, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.Eventually(t, func() bool {
		page, err := store.GetPage(context.Background(), id, 1)
		return err == nil && page.HasForm()
	}, time.Second, 5*time.Millisecond)

	res, err := svc.GetOrGenerate(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.FormSourceCache, res.Source)
	assert.Equal(t, int32(1), gen.calls.Load())
}
