// Package form shows the generated form of one page in a scrollable viewport.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driving"
)

// reserved lines for title, stats and help.
const chromeHeight = 7

// View renders the cached or freshly generated HTML of a page.
type View struct {
	styles *styles.Styles
	forms  driving.FormService
	ctx    context.Context

	viewport     viewport.Model
	projectID    int64
	pageNumber   int
	result       *domain.FormResult
	notGenerated bool
	generating   bool
	err          error
	width        int
	height       int
}

// NewView creates a form view.
func NewView(s *styles.Styles, forms driving.FormService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		forms:    forms,
		ctx:      context.Background(),
		viewport: viewport.New(80, 24-chromeHeight),
		width:    80,
		height:   24,
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetPage switches to a page and loads its cached form.
func (v *View) SetPage(projectID int64, pageNumber int) tea.Cmd {
	v.projectID = projectID
	v.pageNumber = pageNumber
	v.result = nil
	v.notGenerated = false
	v.generating = false
	v.err = nil
	v.viewport.SetContent("")
	v.viewport.GotoTop()
	return v.load()
}

// load fetches the cached form without generating one.
func (v *View) load() tea.Cmd {
	projectID, n := v.projectID, v.pageNumber
	return func() tea.Msg {
		if v.forms == nil {
			return messages.FormLoaded{ProjectID: projectID, PageNumber: n, Err: errors.New("form service not available")}
		}
		html, err := v.forms.HTML(v.ctx, projectID, n)
		if errors.Is(err, domain.ErrFormNotGenerated) {
			return messages.FormLoaded{ProjectID: projectID, PageNumber: n, NotGenerated: true}
		}
		if err != nil {
			return messages.FormLoaded{ProjectID: projectID, PageNumber: n, Err: err}
		}
		return messages.FormLoaded{
			ProjectID:  projectID,
			PageNumber: n,
			Result:     &domain.FormResult{HTML: html, Source: domain.FormSourceCache},
		}
	}
}

// Generate returns a command that produces the form, or returns the cached one.
func (v *View) Generate() tea.Cmd {
	v.generating = true
	v.err = nil
	projectID, n := v.projectID, v.pageNumber
	return func() tea.Msg {
		result, err := v.forms.GetOrGenerate(v.ctx, projectID, n)
		return messages.FormLoaded{ProjectID: projectID, PageNumber: n, Result: result, Err: err}
	}
}

// Update handles messages for the form view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.FormLoaded:
		if msg.ProjectID != v.projectID || msg.PageNumber != v.pageNumber {
			return v, nil
		}
		v.generating = false
		v.err = msg.Err
		v.notGenerated = msg.NotGenerated
		if msg.Result != nil {
			v.result = msg.Result
			v.viewport.SetContent(msg.Result.HTML)
			v.viewport.GotoTop()
		}
		return v, nil

	case messages.FormCleared:
		if msg.ProjectID == v.projectID && msg.PageNumber == v.pageNumber {
			if msg.Err != nil {
				v.err = msg.Err
				return v, nil
			}
			v.result = nil
			v.notGenerated = true
			v.viewport.SetContent("")
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewPages} }
		case "g":
			if v.generating {
				return v, nil
			}
			projectID, n := v.projectID, v.pageNumber
			return v, tea.Batch(
				func() tea.Msg { return messages.FormGenerating{ProjectID: projectID, PageNumber: n} },
				v.Generate(),
			)
		case "x":
			if v.result == nil {
				return v, nil
			}
			projectID, n := v.projectID, v.pageNumber
			return v, func() tea.Msg {
				err := v.forms.Clear(v.ctx, projectID, n)
				return messages.FormCleared{ProjectID: projectID, PageNumber: n, Err: err}
			}
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// Result returns the displayed form, if any.
func (v *View) Result() *domain.FormResult {
	return v.result
}

// NotGenerated reports whether the page has no cached form.
func (v *View) NotGenerated() bool {
	return v.notGenerated
}

// Generating reports whether a generation is in flight.
func (v *View) Generating() bool {
	return v.generating
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// View renders the form.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Project %d, page %d", v.projectID, v.pageNumber)))
	b.WriteString("\n")

	switch {
	case v.generating:
		b.WriteString(v.styles.Muted.Render("Generating form..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.notGenerated:
		b.WriteString(v.styles.Muted.Render("No form generated yet. Press g to generate one."))
	case v.result != nil:
		b.WriteString(v.renderStats())
		b.WriteString("\n\n")
		b.WriteString(v.viewport.View())
	default:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[g] generate  [x] clear  [↑/↓] scroll  [esc] back"))
	return b.String()
}

func (v *View) renderStats() string {
	parts := []string{v.styles.SourceBadge(v.result.Source)}
	if st := v.result.Stats; st != nil {
		if st.Title != "" {
			parts = append(parts, v.styles.Normal.Render(st.Title))
		}
		parts = append(parts, v.styles.Muted.Render(fmt.Sprintf("%d fields", st.Fields)))
		if st.LowConfidence > 0 {
			parts = append(parts, v.styles.Review.Render(fmt.Sprintf("%d to review", st.LowConfidence)))
		}
	}
	return strings.Join(parts, "  ")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-chromeHeight, 1)
}
