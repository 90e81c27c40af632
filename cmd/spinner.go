package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	waitSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	waitElapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type workDoneMsg struct {
	err error
}

// waitModel shows a spinner and the time spent so far. Acquisition can take
// minutes while a stopped member boots, so the elapsed time matters more than
// the animation.
type waitModel struct {
	spinner spinner.Model
	label   string
	started time.Time
	now     func() time.Time
	work    tea.Cmd

	finished bool
	err      error
}

func newWaitModel(label string, now func() time.Time, work tea.Cmd) waitModel {
	return waitModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(waitSpinnerStyle)),
		label:   label,
		started: now(),
		now:     now,
		work:    work,
	}
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m waitModel) View() string {
	if m.finished {
		return ""
	}

	elapsed := m.now().Sub(m.started).Truncate(time.Second)
	return fmt.Sprintf("%s %s %s", m.spinner.View(), m.label, waitElapsedStyle.Render(elapsed.String()))
}

// runWithSpinner shows label on output until work returns and hands back
// work's error. The program installs no signal handler: Ctrl-C cancels ctx
// through the root command, work decides how to react, and the spinner keeps
// turning until it has.
func runWithSpinner(ctx context.Context, output io.Writer, label string, work func(context.Context) error) error {
	p := tea.NewProgram(
		newWaitModel(label, time.Now, func() tea.Msg {
			return workDoneMsg{err: work(ctx)}
		}),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithoutSignalHandler(),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}

	m, ok := final.(waitModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", final)
	}

	return m.err
}
