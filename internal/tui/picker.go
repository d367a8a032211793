// Package tui provides terminal user interface components for warren.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/warren-vcs/warren/internal/health"
	"github.com/warren-vcs/warren/internal/registry"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionSwitch
	ActionRemove
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action    Action
	Workspace *registry.Workspace
}

// workspaceItem implements list.Item for workspace display
type workspaceItem struct {
	workspace *registry.Workspace
	status    health.Status
	age       string
	current   bool
}

func (i workspaceItem) Title() string {
	if i.current {
		return i.workspace.Name + " *"
	}
	return i.workspace.Name
}

func (i workspaceItem) Description() string {
	statusIcon := "●"
	switch i.status {
	case health.StatusHealthy:
		statusIcon = "✓"
	case health.StatusMissing:
		statusIcon = "✗"
	case health.StatusUnlisted:
		statusIcon = "⚠"
	case health.StatusRemoving:
		statusIcon = "○"
	}

	return fmt.Sprintf("%s %s | %s | %s | %s",
		statusIcon,
		i.workspace.BackendKind,
		i.age,
		string(i.status),
		truncatePath(i.workspace.RootPath, 30),
	)
}

func (i workspaceItem) FilterValue() string {
	return i.workspace.Name
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Entry pairs a workspace with its health verdict for display.
type Entry struct {
	Workspace *registry.Workspace
	Status    health.Status
	Age       string
}

// Model is the bubbletea model for the workspace picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a new workspace picker. current names the workspace the
// registry considers active.
func NewPicker(entries []Entry, current string) Model {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = workspaceItem{
			workspace: e.Workspace,
			status:    e.Status,
			age:       e.Age,
			current:   e.Workspace.Name == current,
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 80, 20)
	l.Title = "Warren - Select Workspace"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return Model{
		list: l,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(workspaceItem); ok {
				m.result = PickerResult{
					Action:    ActionSwitch,
					Workspace: item.workspace,
				}
				m.quitting = true
				return m, tea.Quit
			}

		case "x":
			if item, ok := m.list.SelectedItem().(workspaceItem); ok {
				m.result = PickerResult{
					Action:    ActionRemove,
					Workspace: item.workspace,
				}
				m.quitting = true
				return m, tea.Quit
			}

		case "q", "esc":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Switch  [x] Remove  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive workspace picker
func RunPicker(entries []Entry, current string) (PickerResult, error) {
	if len(entries) == 0 {
		return PickerResult{Action: ActionQuit}, nil
	}

	m := NewPicker(entries, current)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimplePicker is a non-interactive listing for terminals without a TTY.
func SimplePicker(entries []Entry, current string) string {
	var sb strings.Builder

	sb.WriteString("Warren - Workspaces\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(entries) == 0 {
		sb.WriteString("No workspaces found.\n")
		sb.WriteString("Create one with: warren create <name>\n")
		return sb.String()
	}

	for i, e := range entries {
		statusIcon := "●"
		switch e.Status {
		case health.StatusHealthy:
			statusIcon = "✓"
		case health.StatusMissing:
			statusIcon = "✗"
		case health.StatusUnlisted:
			statusIcon = "⚠"
		case health.StatusRemoving:
			statusIcon = "○"
		}

		marker := " "
		if e.Workspace.Name == current {
			marker = "*"
		}

		sb.WriteString(fmt.Sprintf("%d. %s%s %s (%s)\n",
			i+1, marker, statusIcon, e.Workspace.Name, e.Workspace.BackendKind))
		sb.WriteString(fmt.Sprintf("   Age: %s | Root: %s\n\n",
			e.Age, truncatePath(e.Workspace.RootPath, 40)))
	}

	return sb.String()
}
