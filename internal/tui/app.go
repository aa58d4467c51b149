package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/core"
	"github.com/DonovanMods/linux-mc-launcher/internal/diagnose"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
	"github.com/DonovanMods/linux-mc-launcher/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewType represents different screens in the TUI
type ViewType int

const (
	ViewIssues ViewType = iota
	ViewTasks
	ViewInstances
)

// NavigateMsg is sent to change views
type NavigateMsg struct {
	View ViewType
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

// FixDoneMsg reports the end of a fix dispatch
type FixDoneMsg struct {
	Outcome diagnose.FixOutcome
	Err     error
}

// tickInterval paces progress redraws while installs run.
const tickInterval = 150 * time.Millisecond

// App is the main TUI application model
type App struct {
	service     *core.Service
	ctx         context.Context
	keys        *KeyMap
	currentView ViewType
	width       int
	height      int
	err         error
	status      string
	showHelp    bool
	fixing      bool

	issues    views.Issues
	tasks     views.Tasks
	instances views.Instances
}

// NewApp creates a new TUI application
func NewApp(service *core.Service) App {
	a := App{
		service:     service,
		ctx:         context.Background(),
		keys:        NewKeyMap(""),
		currentView: ViewIssues,
		width:       80,
		height:      24,
		issues:      views.NewIssues(domain.IssueReport{}),
		tasks:       views.NewTasks(),
		instances:   views.NewInstances(nil, ""),
	}
	if service != nil {
		a.issues = views.NewIssues(service.Engine().Report())
		a.instances = views.NewInstances(service.Instances().List(), service.Config().SelectedInstance)
	}
	return a
}

// WithContext sets the context commands run under
func (a App) WithContext(ctx context.Context) App {
	a.ctx = ctx
	return a
}

// WithKeyMap replaces the keybindings
func (a App) WithKeyMap(k *KeyMap) App {
	a.keys = k
	return a
}

// CurrentView returns the current view type
func (a App) CurrentView() ViewType {
	return a.currentView
}

// Fixing reports whether a fix dispatch is running
func (a App) Fixing() bool {
	return a.fixing
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	if a.service == nil {
		return nil
	}
	return a.diagnoseCmd()
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		issues, _ := a.issues.Update(msg)
		tasks, _ := a.tasks.Update(msg)
		a.issues, a.tasks = issues.(views.Issues), tasks.(views.Tasks)
		return a, nil

	case NavigateMsg:
		a.currentView = msg.View
		return a, nil

	case ErrorMsg:
		a.err = msg.Err
		return a, nil

	case views.ReportMsg:
		m, _ := a.issues.Update(msg)
		a.issues = m.(views.Issues)
		return a, nil

	case views.FixMsg:
		if a.fixing || len(msg.Issues) == 0 {
			return a, nil
		}
		a.fixing = true
		a.err = nil
		a.status = "Fixing " + domain.KindList(msg.Issues) + "…"
		return a, a.fixCmd(msg.Issues)

	case FixDoneMsg:
		a.fixing = false
		a.err = msg.Err
		a.status = outcomeStatus(msg.Outcome)
		return a, a.reportCmd()

	case views.TaskStartedMsg:
		m, _ := a.tasks.Update(msg)
		a.tasks = m.(views.Tasks)
		return a, tick()

	case views.TaskTickMsg:
		if a.tasks.Running() {
			return a, tick()
		}
		return a, nil

	case views.SelectInstanceMsg:
		return a, a.selectCmd(msg.Path)

	case views.InstancesMsg:
		m, _ := a.instances.Update(msg)
		a.instances = m.(views.Instances)
		return a, nil
	}

	return a.updateCurrentView(msg)
}

func (a App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case a.keys.IsQuit(msg):
		return a, tea.Quit

	case a.keys.IsHelp(msg):
		a.showHelp = !a.showHelp
		return a, nil

	case a.keys.IsRefresh(msg):
		a.err = nil
		return a, a.diagnoseCmd()

	case a.keys.IsFixAll(msg):
		fixable := a.issues.Fixable()
		return a, func() tea.Msg { return views.FixMsg{Issues: fixable} }

	case a.keys.IsCancelTasks(msg):
		if n := a.tasks.CancelRunning(); n > 0 {
			a.status = fmt.Sprintf("Cancelled %d install(s)", n)
		}
		return a, nil
	}

	switch msg.String() {
	case "1":
		a.currentView = ViewIssues
		return a, nil
	case "2":
		a.currentView = ViewTasks
		return a, nil
	case "3":
		a.currentView = ViewInstances
		return a, nil
	}

	return a.updateCurrentView(msg)
}

func (a App) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var m tea.Model
	var cmd tea.Cmd

	switch a.currentView {
	case ViewIssues:
		m, cmd = a.issues.Update(msg)
		a.issues = m.(views.Issues)
	case ViewTasks:
		m, cmd = a.tasks.Update(msg)
		a.tasks = m.(views.Tasks)
	case ViewInstances:
		m, cmd = a.instances.Update(msg)
		a.instances = m.(views.Instances)
	}

	return a, cmd
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return views.TaskTickMsg{} })
}

func (a App) resolving() []domain.IssueKind {
	var out []domain.IssueKind
	for _, k := range domain.Kinds() {
		if a.service.Engine().Resolving(k) {
			out = append(out, k)
		}
	}
	return out
}

func (a App) diagnoseCmd() tea.Cmd {
	if a.service == nil {
		return nil
	}
	return func() tea.Msg {
		report, err := a.service.Diagnose(a.ctx)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return views.ReportMsg{Report: report, Resolving: a.resolving()}
	}
}

func (a App) reportCmd() tea.Cmd {
	if a.service == nil {
		return nil
	}
	return func() tea.Msg {
		return views.ReportMsg{Report: a.service.Engine().Report(), Resolving: a.resolving()}
	}
}

func (a App) fixCmd(issues []domain.Issue) tea.Cmd {
	if a.service == nil {
		return func() tea.Msg { return FixDoneMsg{Outcome: diagnose.FixOutcome{Noop: true}} }
	}
	return func() tea.Msg {
		out, err := a.service.Engine().Fix(a.ctx, issues)
		return FixDoneMsg{Outcome: out, Err: err}
	}
}

func (a App) selectCmd(path string) tea.Cmd {
	if a.service == nil {
		return nil
	}
	return func() tea.Msg {
		if err := a.service.Instances().Select(path); err != nil {
			return ErrorMsg{Err: err}
		}
		return views.InstancesMsg{Instances: a.service.Instances().List(), Current: path}
	}
}

func outcomeStatus(out diagnose.FixOutcome) string {
	if out.Noop {
		return "Nothing to fix"
	}
	msg := "Ran " + strings.Join(out.Ran, ", ")
	if len(out.Failures) > 0 {
		var failed []string
		for _, f := range out.Failures {
			failed = append(failed, f.Fix)
		}
		msg += "; failed: " + strings.Join(failed, ", ")
	}
	return msg
}

// View implements tea.Model
func (a App) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	activeTabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	header := titleStyle.Render("lmc - Linux Minecraft Launcher")

	installing := a.service != nil && a.service.Installer().Busy()
	tabBar := ""
	for i, tab := range tabLabels(installing) {
		if ViewType(i) == a.currentView {
			tabBar += activeTabStyle.Render(tab) + "  "
		} else {
			tabBar += tabStyle.Render(tab) + "  "
		}
	}

	content := a.renderCurrentView()
	if a.showHelp {
		content = a.keys.FullHelp()
	}

	if a.status != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
		content += "\n\n" + statusStyle.Render(a.status)
	}
	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		content += "\n\n" + errStyle.Render(fmt.Sprintf("Error: %v", a.err))
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)
	footer := footerStyle.Render(a.keys.NavigationHelp() + "  f: fix all  r: rediagnose  q: quit  ?: help")

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, tabBar, content, footer)
}

// tabLabels names the views; the installs tab is marked while an install
// runs.
func tabLabels(installing bool) []string {
	installs := "[2]Installs"
	if installing {
		installs += " (running)"
	}
	return []string{"[1]Issues", installs, "[3]Instances"}
}

func (a App) renderCurrentView() string {
	switch a.currentView {
	case ViewIssues:
		if a.service != nil {
			if _, err := a.service.Instances().Selected(); err != nil {
				return "No instance selected. Pick one in [3]Instances."
			}
		}
		return a.issues.View()
	case ViewTasks:
		return a.tasks.View()
	case ViewInstances:
		return a.instances.View()
	default:
		return "Unknown view"
	}
}

// Run starts the TUI application. Issue updates and install tasks of
// service are forwarded to the program while it runs.
func Run(ctx context.Context, service *core.Service) error {
	app := NewApp(service).WithContext(ctx)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	unsub := event.Subscribe(service.Bus(), func(e event.IssuesUpdated) {
		p.Send(views.ReportMsg{Report: e.Report, Resolving: app.resolving()})
	})
	defer unsub()
	service.ObserveTasks(func(o task.Observer) {
		p.Send(views.TaskStartedMsg{Task: o})
	})
	defer service.ObserveTasks(nil)

	_, err := p.Run()
	return err
}
