// Package tui provides an interactive terminal browser for projects, pages
// and their generated forms.
package tui

import (
	"github.com/custodia-labs/pageform/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Projects lists projects and pages.
	Projects driving.ProjectService

	// Forms generates, shows and clears page forms.
	Forms driving.FormService

	// Bulk schedules whole-project generation. Optional.
	Bulk driving.BulkDispatcher
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Projects == nil {
		return ErrMissingProjectService
	}
	if p.Forms == nil {
		return ErrMissingFormService
	}
	return nil
}
