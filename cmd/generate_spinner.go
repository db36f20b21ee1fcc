package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ahamitd/notifyai/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const defaultGenerationLabel = "Writing notification..."

type generationDoneMsg struct {
	result domain.GenerationResult
}

// generationSpinner shows which provider is being asked and for how long
// while a generation runs.
type generationSpinner struct {
	spinner spinner.Model
	label   string
	started time.Time
	elapsed time.Duration
	work    tea.Cmd
	result  domain.GenerationResult
	done    bool
}

func newGenerationSpinner(label string, started time.Time, work tea.Cmd) generationSpinner {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return generationSpinner{
		spinner: s,
		label:   label,
		started: started,
		work:    work,
	}
}

func (m generationSpinner) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m generationSpinner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !msg.Time.IsZero() && msg.Time.After(m.started) {
			m.elapsed = msg.Time.Sub(m.started).Truncate(time.Second)
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case generationDoneMsg:
		m.done = true
		m.result = msg.result
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m generationSpinner) View() string {
	if m.done {
		return ""
	}
	if m.elapsed < time.Second {
		return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
	}

	return fmt.Sprintf("%s %s %s", m.spinner.View(), m.label, m.elapsed)
}

// generationLabel names the provider and model a generation goes to. The
// model is the configured one; a fallback model is only known afterwards.
func generationLabel(settings domain.Settings) string {
	if settings.Provider == "" {
		return defaultGenerationLabel
	}

	return fmt.Sprintf("Asking %s (%s)...", settings.Provider, settings.EffectiveModel())
}

// generateWithSpinner runs generate behind a spinner on output. Outputs that
// are not a terminal get no spinner and generate runs directly.
func generateWithSpinner(ctx context.Context, output io.Writer, label string, generate func(context.Context) domain.GenerationResult) (domain.GenerationResult, error) {
	if !isTerminal(output) {
		return generate(ctx), nil
	}

	workCmd := func() tea.Msg {
		return generationDoneMsg{result: generate(ctx)}
	}

	p := tea.NewProgram(
		newGenerationSpinner(label, time.Now(), workCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return domain.GenerationResult{}, err
	}

	result, ok := finalModel.(generationSpinner)
	if !ok {
		return domain.GenerationResult{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.result, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
