package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
	"github.com/custodia-labs/pageform/internal/logger"
)

// Ensure Codec implements the interface.
var _ driven.PDFCodec = (*Codec)(nil)

var disableConfigDir sync.Once

// Error wraps a failure from one of the underlying PDF libraries.
type Error struct {
	Library string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("PDF %s error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Codec reads and splits PDFs held in memory.
type Codec struct{}

// New creates a codec.
func New() *Codec {
	// pdfcpu would otherwise create a config directory under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)
	return &Codec{}
}

func (c *Codec) readContext(pdf []byte, op string) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(pdf), conf)
	if err != nil {
		return nil, &Error{Library: "pdfcpu", Op: op, Err: fmt.Errorf("reading PDF: %w", err)}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &Error{Library: "pdfcpu", Op: op, Err: fmt.Errorf("counting pages: %w", err)}
	}
	return ctx, nil
}

// PageCount returns the number of pages in the document.
func (c *Codec) PageCount(pdf []byte) (int, error) {
	ctx, err := c.readContext(pdf, "page_count")
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

// PageTexts returns the plain text of every page in order.
func (c *Codec) PageTexts(pdf []byte) ([]string, error) {
	count, err := c.PageCount(pdf)
	if err != nil {
		return nil, err
	}

	texts := make([]string, count)
	reader, err := openText(pdf)
	if err != nil {
		logger.Warn("text extraction unavailable, storing empty page text: %v", err)
		return texts, nil
	}

	for n := 1; n <= count && n <= reader.NumPage(); n++ {
		texts[n-1] = pageText(reader, n)
	}
	return texts, nil
}

// ExtractPage returns the text of one page and a PDF containing only that page.
func (c *Codec) ExtractPage(pdf []byte, pageNumber int) (string, []byte, error) {
	ctx, err := c.readContext(pdf, "extract_page")
	if err != nil {
		return "", nil, err
	}
	if pageNumber < 1 || pageNumber > ctx.PageCount {
		return "", nil, &domain.PageOutOfRangeError{Page: pageNumber, Total: ctx.PageCount}
	}

	single, err := pdfcpu.ExtractPages(ctx, []int{pageNumber}, false)
	if err != nil {
		return "", nil, &Error{Library: "pdfcpu", Op: "extract_page", Err: err}
	}
	var buf bytes.Buffer
	if err := api.WriteContext(single, &buf); err != nil {
		return "", nil, &Error{Library: "pdfcpu", Op: "write_page", Err: err}
	}

	text := ""
	if reader, err := openText(pdf); err == nil {
		text = pageText(reader, pageNumber)
	} else {
		logger.Debug("text extraction unavailable for page %d: %v", pageNumber, err)
	}

	return text, buf.Bytes(), nil
}

func openText(pdf []byte) (reader *ledongthuc.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader, err = nil, &Error{Library: "ledongthuc", Op: "open", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	reader, err = ledongthuc.NewReader(bytes.NewReader(pdf), int64(len(pdf)))
	if err != nil {
		return nil, &Error{Library: "ledongthuc", Op: "open", Err: err}
	}
	return reader, nil
}

// pageText extracts plain text, returning "" when the page has none or
// the content stream cannot be decoded.
func pageText(reader *ledongthuc.Reader, n int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("text extraction panicked on page %d: %v", n, r)
			text = ""
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		logger.Debug("text extraction failed on page %d: %v", n, err)
		return ""
	}
	return strings.TrimSpace(content)
}
