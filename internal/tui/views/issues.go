package views

import (
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReportMsg carries a fresh issue report. Resolving lists kinds a fix is
// currently working on.
type ReportMsg struct {
	Report    domain.IssueReport
	Resolving []domain.IssueKind
}

// FixMsg asks for the given issues to be fixed
type FixMsg struct {
	Issues []domain.Issue
}

// Issues is the diagnosis view
type Issues struct {
	issues    []domain.Issue
	resolving map[domain.IssueKind]bool
	selected  int
	width     int
	height    int
}

// NewIssues creates a new issues view
func NewIssues(report domain.IssueReport) Issues {
	m := Issues{width: 80, height: 24}
	return m.withReport(ReportMsg{Report: report})
}

func (m Issues) withReport(msg ReportMsg) Issues {
	m.issues = msg.Report.Active()
	m.resolving = make(map[domain.IssueKind]bool, len(msg.Resolving))
	for _, k := range msg.Resolving {
		m.resolving[k] = true
	}
	if m.selected >= len(m.issues) {
		m.selected = max(len(m.issues)-1, 0)
	}
	return m
}

// Selected returns the currently selected index
func (m Issues) Selected() int {
	return m.selected
}

// Count returns the number of active issues
func (m Issues) Count() int {
	return len(m.issues)
}

// Blocking returns the number of issues that prevent a launch
func (m Issues) Blocking() int {
	n := 0
	for _, is := range m.issues {
		if is.Blocking() {
			n++
		}
	}
	return n
}

// Fixable returns every autofixable issue not already being fixed
func (m Issues) Fixable() []domain.Issue {
	var out []domain.Issue
	for _, is := range m.issues {
		if is.AutoFix && !m.resolving[is.Kind] {
			out = append(out, is)
		}
	}
	return out
}

// SelectedIssue returns the currently selected issue
func (m Issues) SelectedIssue() *domain.Issue {
	if len(m.issues) == 0 || m.selected >= len(m.issues) {
		return nil
	}
	return &m.issues[m.selected]
}

// Init implements tea.Model
func (m Issues) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Issues) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ReportMsg:
		return m.withReport(msg), nil
	}

	return m, nil
}

func (m Issues) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.issues) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		m.selected--
		if m.selected < 0 {
			m.selected = len(m.issues) - 1
		}
		return m, nil

	case "down", "j":
		m.selected++
		if m.selected >= len(m.issues) {
			m.selected = 0
		}
		return m, nil

	case "enter":
		is := m.SelectedIssue()
		if is != nil && is.AutoFix && !m.resolving[is.Kind] {
			issue := *is
			return m, func() tea.Msg {
				return FixMsg{Issues: []domain.Issue{issue}}
			}
		}
		return m, nil

	case "home", "g":
		m.selected = 0
		return m, nil

	case "end", "G":
		m.selected = len(m.issues) - 1
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Issues) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	blockingStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("196"))

	optionalStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("214"))

	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(6)

	output := titleStyle.Render("Diagnosis") + "\n"

	if len(m.issues) == 0 {
		okStyle := lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("42"))
		output += okStyle.Render("✓ No issues. Ready to launch.") + "\n"
		return output
	}

	output += infoStyle.Render(fmt.Sprintf("%d issue(s), %d blocking", len(m.issues), m.Blocking())) + "\n\n"

	for i, is := range m.issues {
		cursor := "  "
		style := optionalStyle
		if is.Blocking() {
			style = blockingStyle
		}
		if i == m.selected {
			cursor = "▸ "
			style = selectedStyle
		}

		marker := "○"
		if is.Blocking() {
			marker = "●"
		}
		tag := ""
		switch {
		case m.resolving[is.Kind]:
			tag = " [fixing…]"
		case is.AutoFix:
			tag = " [autofix]"
		}
		output += style.Render(fmt.Sprintf("%s%s %s%s", cursor, marker, is.Summary(), tag)) + "\n"

		if i == m.selected && is.Multi {
			for j, item := range is.Items {
				if j == 5 {
					output += detailStyle.Render(fmt.Sprintf("… and %d more", len(is.Items)-5)) + "\n"
					break
				}
				output += detailStyle.Render(domain.NewIssue(is.Kind, item).Summary()) + "\n"
			}
		}
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	output += helpStyle.Render("↑/↓: navigate  enter: fix selected  f: fix all  r: rediagnose")

	return output
}
