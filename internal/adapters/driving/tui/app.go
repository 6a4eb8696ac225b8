package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/views/form"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/views/pages"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/views/projects"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView     *menu.View
	projectsView *projects.View
	pagesView    *pages.View
	formView     *form.View
	statusBar    *status.Bar

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingProjectService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		menuView:     menu.NewView(s),
		projectsView: projects.NewView(s, ports.Projects, ports.Bulk),
		pagesView:    pages.NewView(s, ports.Projects, ports.Forms),
		formView:     form.NewView(s, ports.Forms),
		statusBar:    status.NewBar(s, km),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.projectsView.SetContext(ctx)
	a.pagesView.SetContext(ctx)
	a.formView.SetContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("pageform"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.forwardKey(msg)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.ProjectsLoaded:
		a.projectsView, cmd = a.projectsView.Update(msg)
		a.setStatusErr(msg.Err)
		if msg.Err == nil {
			a.statusBar.SetItems(len(msg.Projects), "projects")
		}
		return a, cmd

	case messages.ProjectSelected:
		a.currentView = messages.ViewPages
		a.statusBar.SetState(status.StateLoading)
		a.statusBar.SetHints(a.keymap.PagesHelp())
		return a, a.pagesView.SetProject(msg.Project)

	case messages.PagesLoaded:
		a.pagesView, cmd = a.pagesView.Update(msg)
		a.setStatusErr(msg.Err)
		if msg.Err == nil {
			a.statusBar.SetItems(len(msg.Pages), "pages")
		}
		return a, cmd

	case messages.PageSelected:
		a.currentView = messages.ViewForm
		a.statusBar.SetMessage("")
		return a, a.formView.SetPage(msg.ProjectID, msg.PageNumber)

	case messages.FormGenerating:
		a.statusBar.SetState(status.StateGenerating)
		a.statusBar.SetMessage(fmt.Sprintf("Generating form for page %d...", msg.PageNumber))
		return a, nil

	case messages.FormLoaded:
		a.pagesView, _ = a.pagesView.Update(msg)
		a.formView, cmd = a.formView.Update(msg)
		a.setStatusErr(msg.Err)
		if msg.Err == nil && msg.Result != nil {
			a.statusBar.SetMessage(fmt.Sprintf("Page %d: %s", msg.PageNumber, msg.Result.Source))
		}
		return a, cmd

	case messages.FormCleared:
		a.pagesView, _ = a.pagesView.Update(msg)
		a.formView, cmd = a.formView.Update(msg)
		a.setStatusErr(msg.Err)
		if msg.Err == nil {
			a.statusBar.SetMessage(fmt.Sprintf("Cleared form for page %d", msg.PageNumber))
		}
		return a, cmd

	case messages.BulkScheduled:
		a.projectsView, cmd = a.projectsView.Update(msg)
		a.setStatusErr(msg.Err)
		return a, cmd

	case messages.ErrorOccurred:
		a.setStatusErr(msg.Err)
		return a, nil
	}

	return a, a.forwardOther(msg)
}

func (a *App) forwardKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewProjects:
		a.projectsView, cmd = a.projectsView.Update(msg)
	case messages.ViewPages:
		a.pagesView, cmd = a.pagesView.Update(msg)
	case messages.ViewForm:
		a.formView, cmd = a.formView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			return a.switchView(messages.ViewMenu)
		}
	}
	return cmd
}

func (a *App) forwardOther(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewForm:
		a.formView, cmd = a.formView.Update(msg)
	case messages.ViewProjects, messages.ViewPages, messages.ViewHelp:
	}
	return cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	a.err = nil
	a.statusBar.Clear()

	switch view {
	case messages.ViewProjects:
		a.statusBar.SetState(status.StateLoading)
		a.statusBar.SetHints(a.keymap.ProjectsHelp())
		return a.projectsView.Load()
	case messages.ViewPages:
		a.statusBar.SetHints(a.keymap.PagesHelp())
		a.statusBar.SetItems(a.pagesView.Count(), "pages")
		return a.pagesView.Load()
	case messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
	case messages.ViewMenu, messages.ViewForm:
	}
	return nil
}

func (a *App) setStatusErr(err error) {
	a.err = err
	if err != nil {
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(err.Error())
		return
	}
	a.statusBar.SetState(status.StateReady)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewProjects:
		body = a.projectsView.View()
	case messages.ViewPages:
		body = a.pagesView.View()
	case messages.ViewForm:
		body = a.formView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		return a.menuView.View()
	}
	return body + "\n" + a.statusBar.View()
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	// One line for the status bar.
	viewHeight := max(height-1, 1)
	a.menuView.SetDimensions(width, height)
	a.projectsView.SetDimensions(width, viewHeight)
	a.pagesView.SetDimensions(width, viewHeight)
	a.formView.SetDimensions(width, viewHeight)
	a.statusBar.SetWidth(width)
}
