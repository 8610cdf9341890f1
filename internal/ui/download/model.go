package download

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	uiprogress "github.com/symnet/etsm/internal/ui/progress"
	"github.com/symnet/etsm/internal/ui/styles"
)

// ReportFunc receives download progress. total is -1 when the remote
// does not advertise a size.
type ReportFunc func(downloaded, total int64)

// Task is a single named unit of work with optional byte progress.
type Task struct {
	Name string
	Run  func(report ReportFunc) error
}

// Model is the bubbletea model that runs a list of tasks sequentially
// while rendering a step list with a byte progress bar.
type Model struct {
	title       string
	spinner     spinner.Model
	progressBar progress.Model
	program     *tea.Program

	tasks       []Task
	steps       []uiprogress.Step
	currentStep int
	subProgress float64
	subDetail   string

	done  bool
	err   error
	width int
}

// NewModel creates a task-runner model with the given title and tasks
func NewModel(title string, tasks []Task) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	steps := make([]uiprogress.Step, len(tasks))
	for i, t := range tasks {
		steps[i] = uiprogress.Step{Name: t.Name, State: uiprogress.StatePending}
	}

	return &Model{
		title:       title,
		spinner:     s,
		progressBar: p,
		tasks:       tasks,
		steps:       steps,
		width:       80,
	}
}

// SetProgram attaches the running program so tasks can push progress messages
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

// Messages
type (
	taskDoneMsg struct{ step int }
	taskFailMsg struct {
		step int
		err  error
	}
	progressMsg struct {
		downloaded int64
		total      int64
	}
)

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
		m.startTask(0),
	)
}

func (m *Model) startTask(i int) tea.Cmd {
	if i >= len(m.tasks) {
		return tea.Quit
	}
	m.steps[i].State = uiprogress.StateInProgress
	m.currentStep = i
	task := m.tasks[i]
	return func() tea.Msg {
		report := func(downloaded, total int64) {
			if m.program != nil {
				m.program.Send(progressMsg{downloaded: downloaded, total: total})
			}
		}
		if err := task.Run(report); err != nil {
			return taskFailMsg{step: i, err: err}
		}
		return taskDoneMsg{step: i}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = minInt(msg.Width-10, 40)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd

	case taskDoneMsg:
		m.steps[msg.step].State = uiprogress.StateComplete
		m.subProgress = 0
		m.subDetail = ""
		if msg.step+1 >= len(m.tasks) {
			m.done = true
			return m, tea.Tick(time.Millisecond*300, func(time.Time) tea.Msg {
				return tea.Quit()
			})
		}
		return m, m.startTask(msg.step + 1)

	case taskFailMsg:
		m.steps[msg.step].State = uiprogress.StateError
		m.steps[msg.step].Error = msg.err
		m.done = true
		m.err = msg.err
		return m, tea.Tick(time.Millisecond*500, func(time.Time) tea.Msg {
			return tea.Quit()
		})

	case progressMsg:
		if msg.total > 0 {
			m.subProgress = float64(msg.downloaded) / float64(msg.total) * 100
			m.subDetail = fmt.Sprintf("%s / %s", formatBytes(msg.downloaded), formatBytes(msg.total))
			return m, m.progressBar.SetPercent(m.subProgress / 100)
		}
		m.subDetail = formatBytes(msg.downloaded)
		return m, nil
	}

	return m, nil
}

// View renders the model
func (m *Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Text).
		Bold(true)
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	indent := "  "
	for i, step := range m.steps {
		icon := uiprogress.StyledIcon(step.State)
		textStyle := uiprogress.StepStyle(step.State)

		if step.State == uiprogress.StateInProgress {
			icon = m.spinner.View()
		}

		line := fmt.Sprintf("%s%s %s", indent, icon, textStyle.Render(step.Name))
		b.WriteString(line)
		b.WriteString("\n")

		// Show progress bar under the in-flight step
		if i == m.currentStep && step.State == uiprogress.StateInProgress && m.subDetail != "" {
			subDetailStyle := lipgloss.NewStyle().Foreground(styles.Muted)
			b.WriteString(indent + "    " + subDetailStyle.Render(m.subDetail) + "\n")
			if m.subProgress > 0 {
				b.WriteString(indent + "  " + m.progressBar.View() + "\n")
			}
		}
	}

	if m.done {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(uiprogress.FormatError(m.err.Error()))
		} else {
			b.WriteString(uiprogress.FormatSuccess("All downloads complete"))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// GetError returns any error that occurred
func (m *Model) GetError() error {
	return m.err
}

// Run executes the tasks inside a bubbletea program and returns the
// first task error, if any.
func Run(title string, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	model := NewModel(title, tasks)
	p := tea.NewProgram(model)
	model.SetProgram(p)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running progress display: %w", err)
	}
	if m, ok := final.(*Model); ok {
		return m.GetError()
	}
	return nil
}

// RunPlain executes the tasks without the TUI, printing plain step lines.
// Used when stdout is not a terminal.
func RunPlain(title string, tasks []Task) error {
	uiprogress.PrintTitle(title)
	for _, t := range tasks {
		uiprogress.PrintInProgress(t.Name)
		if err := t.Run(func(int64, int64) {}); err != nil {
			uiprogress.PrintError(t.Name + ": " + err.Error())
			return err
		}
		uiprogress.PrintComplete(t.Name)
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
