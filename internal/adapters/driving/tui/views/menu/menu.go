// Package menu is the start screen of the TUI.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pageform/internal/adapters/driving/tui/styles"
)

// Entry is one line of the start screen. An entry without a target view quits.
type Entry struct {
	Label    string
	Detail   string
	Shortcut key.Binding
	Target   messages.ViewType
	Quit     bool
}

// View lists the entries and jumps to the chosen one.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	entries  []Entry
	selected int
	width    int
	height   int
	ready    bool
}

// NewView builds the start screen.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	keys := keymap.DefaultKeyMap()

	return &View{
		styles: s,
		keys:   keys,
		entries: []Entry{
			{
				Label:    "Projects",
				Detail:   "browse uploaded PDFs, their pages and forms",
				Shortcut: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "projects")),
				Target:   messages.ViewProjects,
			},
			{
				Label:    "Keys",
				Detail:   "every key binding",
				Shortcut: keys.Help,
				Target:   messages.ViewHelp,
			},
			{
				Label:    "Quit",
				Shortcut: keys.Quit,
				Quit:     true,
			},
		},
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor or opens an entry.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			v.selected = max(v.selected-1, 0)
		case key.Matches(msg, v.keys.Down):
			v.selected = min(v.selected+1, len(v.entries)-1)
		case key.Matches(msg, v.keys.Select):
			return v, v.open(v.entries[v.selected])
		default:
			for i, e := range v.entries {
				if key.Matches(msg, e.Shortcut) {
					v.selected = i
					return v, v.open(e)
				}
			}
		}
	}
	return v, nil
}

func (v *View) open(e Entry) tea.Cmd {
	if e.Quit {
		return tea.Quit
	}
	target := e.Target
	return func() tea.Msg { return messages.ViewChanged{View: target} }
}

// View renders the entries with their shortcuts.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("pageform"))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render("PDF pages to editable HTML forms"))
	b.WriteString("\n\n")

	for i, e := range v.entries {
		label := fmt.Sprintf("[%s] %s", e.Shortcut.Help().Key, e.Label)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(label))
		} else {
			b.WriteString(v.styles.Normal.Render(label))
		}
		if e.Detail != "" {
			b.WriteString("  " + v.styles.Muted.Render(e.Detail))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("↑/↓ move  enter open"))
	return b.String()
}

// SetDimensions records the terminal size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.selected
}
