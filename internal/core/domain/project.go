package domain

import (
	"strings"
	"time"
)

// Project is a single uploaded PDF and the pages derived from it.
// A project is immutable once created; deleting it removes its pages.
type Project struct {
	// ID is the surrogate identifier assigned by the store.
	ID int64 `json:"id" yaml:"id"`

	// Name is the original filename of the upload.
	Name string `json:"name" yaml:"name"`

	// PDF holds the raw bytes of the uploaded document.
	PDF []byte `json:"-" yaml:"-"`

	// TotalPages is the page count computed at upload time.
	TotalPages int `json:"total_pages" yaml:"total_pages"`

	// ChatSessionID links the project to its external chat session.
	ChatSessionID *string `json:"chat_session_id" yaml:"chat_session_id,omitempty"`

	// CreatedAt is when the project was stored.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Page is one page of a project.
type Page struct {
	ID         int64  `json:"id" yaml:"id"`
	ProjectID  int64  `json:"project_id" yaml:"project_id"`
	PageNumber int    `json:"page_number" yaml:"page_number"`
	Text       string `json:"text_content" yaml:"text_content"`

	// Language is the ISO 639-1 code detected for Text, empty when unknown.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// FormHTML is nil until a form has been generated for the page.
	FormHTML *string `json:"generated_form_html" yaml:"generated_form_html,omitempty"`
}

// HasForm reports whether generated HTML is cached on the page.
func (p *Page) HasForm() bool {
	return p.FormHTML != nil
}

// NewProject describes a project to be inserted together with its pages.
type NewProject struct {
	Name          string
	PDF           []byte
	ChatSessionID *string
	Pages         []NewPage
}

// NewPage is a page row to be inserted alongside its project.
type NewPage struct {
	PageNumber int
	Text       string
	Language   string
}

// IsPDFFilename reports whether name carries a .pdf extension, ignoring case.
func IsPDFFilename(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
