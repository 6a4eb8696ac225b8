// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/pageform/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewProjects lists projects.
	ViewProjects
	// ViewPages lists the pages of one project.
	ViewPages
	// ViewForm shows the form of one page.
	ViewForm
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewProjects:
		return "projects"
	case ViewPages:
		return "pages"
	case ViewForm:
		return "form"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// ProjectsLoaded carries the project list.
type ProjectsLoaded struct {
	Projects []domain.Project
	Err      error
}

// ProjectSelected opens the pages of a project.
type ProjectSelected struct {
	Project domain.Project
}

// PagesLoaded carries the pages of a project.
type PagesLoaded struct {
	ProjectID int64
	Pages     []domain.Page
	Err       error
}

// PageSelected opens the form of a page.
type PageSelected struct {
	ProjectID  int64
	PageNumber int
}

// FormGenerating is sent when a generation starts.
type FormGenerating struct {
	ProjectID  int64
	PageNumber int
}

// FormLoaded carries a page form. NotGenerated is set when the page has
// no cached form and none was requested.
type FormLoaded struct {
	ProjectID    int64
	PageNumber   int
	Result       *domain.FormResult
	NotGenerated bool
	Err          error
}

// FormCleared signals a cached form was removed.
type FormCleared struct {
	ProjectID  int64
	PageNumber int
	Err        error
}

// BulkScheduled carries the report of a bulk dispatch.
type BulkScheduled struct {
	Report *domain.BulkReport
	Err    error
}
