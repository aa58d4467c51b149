package views

import (
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SelectInstanceMsg is sent when the user picks an instance
type SelectInstanceMsg struct {
	Path string
}

// InstancesMsg replaces the listed instances
type InstancesMsg struct {
	Instances []domain.Instance
	Current   string
}

// Instances lists the configured instances
type Instances struct {
	instances []domain.Instance
	current   string
	selected  int
}

// NewInstances creates a new instances view. current is the path of the
// selected instance, if any.
func NewInstances(instances []domain.Instance, current string) Instances {
	m := Instances{instances: instances, current: current}
	for i, inst := range instances {
		if inst.Path == current {
			m.selected = i
		}
	}
	return m
}

// Selected returns the currently highlighted index
func (m Instances) Selected() int {
	return m.selected
}

// Init implements tea.Model
func (m Instances) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Instances) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case InstancesMsg:
		return NewInstances(msg.Instances, msg.Current), nil

	case tea.KeyMsg:
		if len(m.instances) == 0 {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.instances)-1 {
				m.selected++
			}
		case "enter":
			path := m.instances[m.selected].Path
			if path == m.current {
				return m, nil
			}
			return m, func() tea.Msg {
				return SelectInstanceMsg{Path: path}
			}
		}
	}
	return m, nil
}

// View implements tea.Model
func (m Instances) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("69")).
		MarginBottom(1)

	itemStyle := lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle := lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(lipgloss.Color("205")).
		Bold(true)
	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		PaddingLeft(6)

	output := titleStyle.Render("Instances") + "\n"

	if len(m.instances) == 0 {
		output += itemStyle.Render("No instances configured. Create one with:") + "\n"
		output += itemStyle.Render("  lmc instance create <path> --minecraft <version>") + "\n"
		return output
	}

	for i, inst := range m.instances {
		cursor, style := "  ", itemStyle
		if i == m.selected {
			cursor, style = "▸ ", selectedStyle
		}
		active := " "
		if inst.Path == m.current {
			active = "*"
		}
		runtime := inst.Runtime.ExpectedID()
		if runtime == "" {
			runtime = "latest release"
		}
		output += style.Render(fmt.Sprintf("%s%s %s (%s)", cursor, active, inst.Name, runtime)) + "\n"
		if i == m.selected {
			output += detailStyle.Render(inst.Path) + "\n"
		}
	}
	return output
}
