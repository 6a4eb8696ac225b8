package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// fakeCodec treats the PDF bytes as page texts separated by form feeds.
type fakeCodec struct {
	err error
}

func (c *fakeCodec) pages(pdf []byte) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		return nil, errors.New("not a pdf")
	}
	return strings.Split(strings.TrimPrefix(string(pdf), "%PDF"), "\f"), nil
}

func (c *fakeCodec) PageCount(pdf []byte) (int, error) {
	pages, err := c.pages(pdf)
	return len(pages), err
}

func (c *fakeCodec) PageTexts(pdf []byte) ([]string, error) {
	return c.pages(pdf)
}

func (c *fakeCodec) ExtractPage(pdf []byte, pageNumber int) (string, []byte, error) {
	pages, err := c.pages(pdf)
	if err != nil {
		return "", nil, err
	}
	if pageNumber < 1 || pageNumber > len(pages) {
		return "", nil, &domain.PageOutOfRangeError{Page: pageNumber, Total: len(pages)}
	}
	text := pages[pageNumber-1]
	return text, []byte("%PDF" + text), nil
}

// makePDF builds input for fakeCodec with the given page texts.
func makePDF(texts ...string) []byte {
	return []byte("%PDF" + strings.Join(texts, "\f"))
}

// fakeGenerator returns a fixed response and counts calls.
type fakeGenerator struct {
	calls    atomic.Int32
	html     string
	err      error
	delay    time.Duration
	failPage string
	lastPDF  []byte
	mu       sync.Mutex
}

func (g *fakeGenerator) GenerateForm(ctx context.Context, pagePDF []byte, prompt string) (string, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.lastPDF = pagePDF
	g.mu.Unlock()
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.err != nil {
		return "", g.err
	}
	if g.failPage != "" && string(pagePDF) == "%PDF"+g.failPage {
		return "", &domain.ContentBlockedError{Reason: "SAFETY"}
	}
	if g.html != "" {
		return g.html, nil
	}
	return fmt.Sprintf("<form>%s|%s</form>", strings.TrimPrefix(string(pagePDF), "%PDF"), prompt), nil
}

func (g *fakeGenerator) ModelName() string            { return "fake-model" }
func (g *fakeGenerator) Ping(_ context.Context) error { return nil }
func (g *fakeGenerator) Close() error                 { return nil }

// fakePrompts returns the prompt name as its content.
type fakePrompts struct{}

func (fakePrompts) Load(name string) (string, error) { return name, nil }
func (fakePrompts) Reload()                          {}

// fakeChat records calls to the chat service.
type fakeChat struct {
	sessionErr  error
	uploadErr   error
	sessions    int
	uploads     int
	lastMessage string
}

func (c *fakeChat) NewSession(_ context.Context) (domain.SessionOutcome, error) {
	c.sessions++
	if c.sessionErr != nil {
		return domain.SessionOutcome{}, c.sessionErr
	}
	return domain.SessionOutcome{SessionID: fmt.Sprintf("session-%d", c.sessions)}, nil
}

func (c *fakeChat) UploadPDF(_ context.Context, sessionID, _ string, _ []byte, message string) domain.UploadOutcome {
	c.uploads++
	c.lastMessage = message
	if c.uploadErr != nil {
		return domain.UploadOutcome{SessionID: sessionID, Err: c.uploadErr}
	}
	return domain.UploadOutcome{SessionID: sessionID, Delivered: true}
}

// fakeLanguage tags every non-empty text as English.
type fakeLanguage struct{}

func (fakeLanguage) Detect(text string) string {
	if text == "" {
		return ""
	}
	return "en"
}

// fakeInspector counts "<input" occurrences.
type fakeInspector struct{}

func (fakeInspector) Inspect(html string) (*domain.FormStats, error) {
	return &domain.FormStats{Fields: strings.Count(html, "<input")}, nil
}

func (fakeInspector) Document(html, title string) string {
	return "<html><title>" + title + "</title><body>" + html + "</body></html>"
}
