// Package pdf implements driven.PDFCodec over in-memory documents.
//
// Page counting and single-page splitting use pdfcpu, which reads the
// document structure in relaxed validation mode so that scans produced by
// consumer devices are accepted. Text extraction uses ledongthuc/pdf.
// When the text extractor cannot read a document that pdfcpu accepts, every
// page yields empty text rather than failing the upload.
package pdf
