// Package pages provides the page list of a project.
package pages

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

const previewWidth = 50

// View lists the pages of one project.
type View struct {
	styles   *styles.Styles
	projects driving.ProjectService
	forms    driving.FormService
	ctx      context.Context

	project      *domain.Project
	items        []domain.Page
	selected     int
	scrollOffset int
	width        int
	height       int
	loading      bool
	err          error
}

// NewView creates a page list view.
func NewView(s *styles.Styles, projects driving.ProjectService, forms driving.FormService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		projects: projects,
		forms:    forms,
		ctx:      context.Background(),
		width:    80,
		height:   24,
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetProject switches to a project and loads its pages.
func (v *View) SetProject(p domain.Project) tea.Cmd {
	v.project = &p
	v.items = nil
	v.selected = 0
	v.scrollOffset = 0
	v.err = nil
	return v.Load()
}

// Load returns a command that fetches the pages.
func (v *View) Load() tea.Cmd {
	if v.project == nil {
		return nil
	}
	v.loading = true
	id := v.project.ID
	return func() tea.Msg {
		if v.projects == nil {
			return messages.PagesLoaded{ProjectID: id, Err: errors.New("project service not available")}
		}
		items, err := v.projects.Pages(v.ctx, id)
		return messages.PagesLoaded{ProjectID: id, Pages: items, Err: err}
	}
}

// Update handles messages for the page list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.PagesLoaded:
		if v.project == nil || msg.ProjectID != v.project.ID {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.items = msg.Pages
		}

	case messages.FormLoaded:
		// A freshly generated form changes the page's cached state.
		if msg.Err == nil && msg.Result != nil && v.project != nil && msg.ProjectID == v.project.ID {
			v.markForm(msg.PageNumber, &msg.Result.HTML)
		}

	case messages.FormCleared:
		if msg.Err != nil {
			v.err = msg.Err
		} else if v.project != nil && msg.ProjectID == v.project.ID {
			v.markForm(msg.PageNumber, nil)
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
			return v, func() tea.Msg {
				return messages.PageSelected{ProjectID: p.ProjectID, PageNumber: p.PageNumber}
			}
		}
	case "g":
		if p, ok := v.Selected(); ok {
			return v, tea.Batch(
				func() tea.Msg { return messages.FormGenerating{ProjectID: p.ProjectID, PageNumber: p.PageNumber} },
				v.generate(p.ProjectID, p.PageNumber),
			)
		}
	case "x":
		if p, ok := v.Selected(); ok && p.HasForm() {
			return v, v.clear(p.ProjectID, p.PageNumber)
		}
	case "r":
		return v, v.Load()
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewProjects} }
	}
	return v, nil
}

func (v *View) generate(projectID int64, n int) tea.Cmd {
	return func() tea.Msg {
		result, err := v.forms.GetOrGenerate(v.ctx, projectID, n)
		return messages.FormLoaded{ProjectID: projectID, PageNumber: n, Result: result, Err: err}
	}
}

func (v *View) clear(projectID int64, n int) tea.Cmd {
	return func() tea.Msg {
		err := v.forms.Clear(v.ctx, projectID, n)
		return messages.FormCleared{ProjectID: projectID, PageNumber: n, Err: err}
	}
}

func (v *View) markForm(n int, html *string) {
	for i := range v.items {
		if v.items[i].PageNumber == n {
			v.items[i].FormHTML = html
			return
		}
	}
}

// Selected returns the highlighted page.
func (v *View) Selected() (domain.Page, bool) {
	if v.selected < 0 || v.selected >= len(v.items) {
		return domain.Page{}, false
	}
	return v.items[v.selected], true
}

// Count returns the number of loaded pages.
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
	title := "Pages"
	if v.project != nil {
		title = fmt.Sprintf("%s (%d pages)", v.project.Name, v.project.TotalPages)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading pages..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("No pages."))
	default:
		end := min(v.scrollOffset+v.visibleItemCount(), len(v.items))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderPage(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[enter] view form  [g] generate  [x] clear  [r] refresh  [esc] back"))
	return b.String()
}

func (v *View) renderPage(i int) string {
	p := v.items[i]
	lang := p.Language
	if lang == "" {
		lang = "--"
	}
	preview := strings.Join(strings.Fields(p.Text), " ")
	if r := []rune(preview); len(r) > previewWidth {
		preview = string(r[:previewWidth]) + "..."
	}

	line := fmt.Sprintf("%3d  %s  %s", p.PageNumber, lang, preview)
	badge := ""
	if p.HasForm() {
		badge = " " + v.styles.Badge.Render("form")
	}
	if i == v.selected {
		return "> " + v.styles.Selected.Render(line) + badge
	}
	return "  " + v.styles.Normal.Render(line) + badge
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

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
