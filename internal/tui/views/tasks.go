package views

import (
	"fmt"
	"strings"

	"github.com/DonovanMods/linux-mc-launcher/internal/task"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// TaskStartedMsg announces a new install task to track
type TaskStartedMsg struct {
	Task task.Observer
}

// TaskTickMsg asks the view to redraw running tasks
type TaskTickMsg struct{}

// maxTasks bounds how many finished tasks stay listed.
const maxTasks = 20

// Tasks shows install progress
type Tasks struct {
	tasks []task.Observer
	bar   progress.Model
	width int
}

// NewTasks creates a new tasks view
func NewTasks() Tasks {
	return Tasks{
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		width: 80,
	}
}

// Count returns the number of tracked tasks
func (m Tasks) Count() int {
	return len(m.tasks)
}

// Running reports whether any tracked task has not finished
func (m Tasks) Running() bool {
	for _, t := range m.tasks {
		if !t.State().Done() {
			return true
		}
	}
	return false
}

// CancelRunning cancels every unfinished task
func (m Tasks) CancelRunning() int {
	n := 0
	for _, t := range m.tasks {
		if !t.State().Done() {
			t.Cancel()
			n++
		}
	}
	return n
}

// Init implements tea.Model
func (m Tasks) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Tasks) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-40, 10), 60)
		return m, nil

	case TaskStartedMsg:
		m.tasks = append([]task.Observer{msg.Task}, m.tasks...)
		if len(m.tasks) > maxTasks {
			m.tasks = m.tasks[:maxTasks]
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model
func (m Tasks) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	output := titleStyle.Render("Installs") + "\n"
	if len(m.tasks) == 0 {
		output += infoStyle.Render("  No installs started yet.") + "\n"
		return output
	}

	for _, t := range m.tasks {
		output += m.renderTask(t.Snapshot()) + "\n"
	}
	return output
}

func (m Tasks) renderTask(s task.Snapshot) string {
	stateStyle := lipgloss.NewStyle().Width(10)
	switch s.State {
	case task.Succeeded:
		stateStyle = stateStyle.Foreground(lipgloss.Color("42"))
	case task.Failed:
		stateStyle = stateStyle.Foreground(lipgloss.Color("196"))
	case task.Cancelled:
		stateStyle = stateStyle.Foreground(lipgloss.Color("241"))
	default:
		stateStyle = stateStyle.Foreground(lipgloss.Color("214"))
	}

	line := fmt.Sprintf("  %-24s %s %s %s",
		truncate(s.Name, 24), stateStyle.Render(s.State.String()), m.bar.ViewAs(s.Progress.Fraction()), Amount(s.Progress))
	if s.Err != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).PaddingLeft(4)
		line += "\n" + errStyle.Render(truncate(s.Err, max(m.width-6, 20)))
	}
	return line
}

// Amount renders current/total in the task's unit.
func Amount(p task.Progress) string {
	if p.Total <= 0 {
		return ""
	}
	if p.Unit == "bytes" {
		return humanize.Bytes(uint64(p.Current)) + "/" + humanize.Bytes(uint64(p.Total))
	}
	return strings.TrimSpace(fmt.Sprintf("%d/%d %s", p.Current, p.Total, p.Unit))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
