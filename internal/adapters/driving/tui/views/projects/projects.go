// Package projects provides the project list view for the TUI.
package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driving"
)

// View lists projects, newest first.
type View struct {
	styles   *styles.Styles
	projects driving.ProjectService
	bulk     driving.BulkDispatcher
	ctx      context.Context

	items        []domain.Project
	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
	notice       string
}

// NewView creates a project list view. bulk may be nil.
func NewView(s *styles.Styles, projects driving.ProjectService, bulk driving.BulkDispatcher) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		projects: projects,
		bulk:     bulk,
		ctx:      context.Background(),
		width:    80,
		height:   24,
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads the project list.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load returns a command that fetches projects.
func (v *View) Load() tea.Cmd {
	v.loading = true
	return func() tea.Msg {
		if v.projects == nil {
			return messages.ProjectsLoaded{Err: errors.New("project service not available")}
		}
		items, err := v.projects.List(v.ctx)
		return messages.ProjectsLoaded{Projects: items, Err: err}
	}
}

// Update handles messages for the project list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.ProjectsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.items = msg.Projects
			if v.selected >= len(v.items) {
				v.selected = max(len(v.items)-1, 0)
			}
		}

	case messages.BulkScheduled:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.notice = fmt.Sprintf("Scheduled %d pages (batch %s)", msg.Report.Scheduled, msg.Report.BatchID)
		}

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.items)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if p, ok := v.Selected(); ok {
			return v, func() tea.Msg { return messages.ProjectSelected{Project: p} }
		}
	case "r":
		v.notice = ""
		return v, v.Load()
	case "a":
		if p, ok := v.Selected(); ok && v.bulk != nil {
			return v, v.generateAll(p.ID)
		}
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	return v, nil
}

func (v *View) generateAll(projectID int64) tea.Cmd {
	return func() tea.Msg {
		report, err := v.bulk.Dispatch(v.ctx, projectID)
		return messages.BulkScheduled{Report: report, Err: err}
	}
}

// Selected returns the highlighted project.
func (v *View) Selected() (domain.Project, bool) {
	if v.selected < 0 || v.selected >= len(v.items) {
		return domain.Project{}, false
	}
	return v.items[v.selected], true
}

// Count returns the number of loaded projects.
func (v *View) Count() int {
	return len(v.items)
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// View renders the list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Projects"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading projects..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("No projects. Create one with 'pageform project create <file.pdf>'."))
	default:
		end := min(v.scrollOffset+v.visibleItemCount(), len(v.items))
		for i := v.scrollOffset; i < end; i++ {
			p := v.items[i]
			line := fmt.Sprintf("[%d] %s  %d pages  %s", p.ID, p.Name, p.TotalPages, p.CreatedAt.Format("2006-01-02 15:04"))
			if i == v.selected {
				b.WriteString("> " + v.styles.Selected.Render(line))
			} else {
				b.WriteString("  " + v.styles.Normal.Render(line))
			}
			b.WriteString("\n")
		}
	}

	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.notice))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[enter] pages  [a] generate all  [r] refresh  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// adjustScroll keeps the selected item visible.
func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}
