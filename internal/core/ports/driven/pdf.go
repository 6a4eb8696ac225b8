package driven

// PDFCodec reads and splits PDF documents held in memory.
// Page numbers are 1-based.
type PDFCodec interface {
	// PageCount returns the number of pages in the document.
	PageCount(pdf []byte) (int, error)

	// PageTexts returns the plain text of every page in page order.
	// Pages without extractable text yield an empty string.
	PageTexts(pdf []byte) ([]string, error)

	// ExtractPage returns the text of one page and a standalone PDF
	// containing only that page. A page outside 1..PageCount fails with
	// *domain.PageOutOfRangeError.
	ExtractPage(pdf []byte, pageNumber int) (text string, single []byte, err error)
}
