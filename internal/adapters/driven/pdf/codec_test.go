package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page.
// An empty string produces a page with no text operators.
func buildPDF(texts ...string) []byte {
	var b strings.Builder
	offsets := []int{}
	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	n := len(texts)
	b.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, n)
	for i := range texts {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i*2)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, text := range texts {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R "+
			"/Resources << /Font << /F1 3 0 R >> >> >>", 5+i*2))
		content := ""
		if text != "" {
			content = fmt.Sprintf("BT\n/F1 12 Tf\n72 720 Td\n(%s) Tj\nET\n", text)
		}
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content))
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return []byte(b.String())
}

func TestCodec_PageCount(t *testing.T) {
	codec := New()

	count, err := codec.PageCount(buildPDF("one", "two", "three"))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCodec_PageCount_InvalidPDF(t *testing.T) {
	codec := New()

	_, err := codec.PageCount([]byte("definitely not a pdf"))
	require.Error(t, err)

	var pdfErr *Error
	require.True(t, errors.As(err, &pdfErr))
	assert.Equal(t, "pdfcpu", pdfErr.Library)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestCodec_PageTexts(t *testing.T) {
	codec := New()

	texts, err := codec.PageTexts(buildPDF("Applicant Name", "", "Signature"))
	require.NoError(t, err)
	require.Len(t, texts, 3)
	assert.Contains(t, texts[0], "Applicant Name")
	assert.Equal(t, "", texts[1])
	assert.Contains(t, texts[2], "Signature")
}

func TestCodec_ExtractPage_AllValidPages(t *testing.T) {
	codec := New()
	doc := buildPDF("Page 1 Text", "Page 2 Text", "Page 3 Text", "Page 4 Text", "Page 5 Text")

	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("page %d", n), func(t *testing.T) {
			text, single, err := codec.ExtractPage(doc, n)
			require.NoError(t, err)
			assert.Contains(t, text, fmt.Sprintf("Page %d Text", n))
			require.True(t, bytes.HasPrefix(single, []byte("%PDF")))

			count, err := codec.PageCount(single)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestCodec_ExtractPage_OutOfRange(t *testing.T) {
	codec := New()
	doc := buildPDF("a", "b", "c")

	for _, n := range []int{-1, 0, 4} {
		t.Run(fmt.Sprintf("page %d", n), func(t *testing.T) {
			_, _, err := codec.ExtractPage(doc, n)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrNotFound)

			var rangeErr *domain.PageOutOfRangeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Equal(t, 3, rangeErr.Total)
			assert.Equal(t, n, rangeErr.Page)
		})
	}
}

func TestCodec_SinglePageKeepsText(t *testing.T) {
	codec := New()
	doc := buildPDF("first", "second")

	_, single, err := codec.ExtractPage(doc, 2)
	require.NoError(t, err)

	texts, err := codec.PageTexts(single)
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "second")
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &Error{Library: "pdfcpu", Op: "read", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "PDF pdfcpu error in read: boom", err.Error())
}
