package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"enhance-with-ai/src/invoker"
	"enhance-with-ai/src/session"
)

const (
	focusInstruction = iota
	focusContent
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0A868")).
			Bold(true).
			MarginBottom(1)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#3b82f6", Dark: "#60a5fa"}).
			Bold(true)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"})
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#ef4444", Dark: "#f87171"}).
			Bold(true)
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#22c55e", Dark: "#4ade80"}).
			Bold(true)
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F0A868")).
			Padding(1, 2)
)

type resultMsg struct {
	resp invoker.Response
}

// Outcome is what the dialog ended with.
type Outcome struct {
	Copied   bool
	Text     string
	Canceled bool
}

// Model is the bubbletea model of the dialog.
type Model struct {
	ctx  context.Context
	ctrl *session.Controller

	instruction textinput.Model
	content     textarea.Model
	spinner     spinner.Model

	focus     int
	busy      bool
	canCopy   bool
	status    string
	statusErr bool
	results   chan invoker.Response
	outcome   Outcome
	width     int
}

// NewModel builds the dialog with its content area prefilled from the clipboard.
func NewModel(ctx context.Context, ctrl *session.Controller) *Model {
	ti := textinput.New()
	ti.Placeholder = "What should be done with the text?"
	ti.CharLimit = 0
	ti.Focus()

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(10)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	prefill := ctrl.Prefill()
	if prefill.Text != "" {
		ta.SetValue(prefill.Text)
	} else {
		ta.Placeholder = prefill.Hint
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctx:         ctx,
		ctrl:        ctrl,
		instruction: ti,
		content:     ta,
		spinner:     sp,
		results:     make(chan invoker.Response, 1),
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 8
		if w < 20 {
			w = 20
		}
		m.instruction.Width = w
		m.content.SetWidth(w)
		return m, nil
	case resultMsg:
		return m, m.handleResult(msg.resp)
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.outcome.Canceled = true
		return tea.Quit
	}

	// Inputs stay locked while the command runs.
	if m.busy {
		return nil
	}

	switch msg.String() {
	case "tab", "shift+tab":
		return m.toggleFocus()
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.focus == focusInstruction {
			return m.submit()
		}
	case "ctrl+y":
		return m.copy()
	}

	var cmd tea.Cmd
	if m.focus == focusInstruction {
		m.instruction, cmd = m.instruction.Update(msg)
	} else {
		m.content, cmd = m.content.Update(msg)
	}
	return cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusInstruction {
		m.focus = focusContent
		m.instruction.Blur()
		return m.content.Focus()
	}
	m.focus = focusInstruction
	m.content.Blur()
	return m.instruction.Focus()
}

func (m *Model) submit() tea.Cmd {
	results := m.results
	err := m.ctrl.Submit(m.ctx, m.instruction.Value(), m.content.Value(), func(resp invoker.Response) {
		results <- resp
	})
	if err != nil {
		m.setStatus(session.InputError(err), true)
		return nil
	}

	m.busy = true
	m.canCopy = false
	m.setStatus(session.MsgThinking, false)
	m.instruction.Blur()
	m.content.Blur()
	return tea.Batch(m.spinner.Tick, waitForResult(results))
}

func waitForResult(results <-chan invoker.Response) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{resp: <-results}
	}
}

func (m *Model) handleResult(resp invoker.Response) tea.Cmd {
	m.busy = false
	m.content.SetValue(session.DisplayText(resp))
	if resp.OK() {
		m.canCopy = true
		m.setStatus("Done. Press ctrl+y to copy the result.", false)
		m.focus = focusContent
		return m.content.Focus()
	}
	m.setStatus("The command failed.", true)
	m.focus = focusInstruction
	return m.instruction.Focus()
}

// copy takes the current content, so edits to the result are kept.
func (m *Model) copy() tea.Cmd {
	if !m.canCopy {
		m.setStatus("Nothing to copy yet.", true)
		return nil
	}
	text := m.content.Value()
	copied, err := m.ctrl.Copy(text)
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	if !copied {
		m.setStatus("Nothing to copy yet.", true)
		return nil
	}
	m.outcome = Outcome{Copied: true, Text: text}
	return tea.Quit
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// Outcome reports how the dialog was closed.
func (m *Model) Outcome() Outcome {
	return m.outcome
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("✨ Enhance with AI"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Instruction"))
	b.WriteString("\n")
	b.WriteString(m.instruction.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Content"))
	b.WriteString("\n")
	b.WriteString(m.content.View())
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(statusStyle.Render(m.spinner.View() + " " + m.status))
	case m.status != "" && m.statusErr:
		b.WriteString(errorStyle.Render(m.status))
	case m.status != "" && m.canCopy:
		b.WriteString(successStyle.Render(m.status))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter/ctrl+s run • tab switch field • ctrl+y copy result • esc close"))

	return frameStyle.Render(b.String())
}

// Run shows the dialog until the user copies a result or closes it.
func Run(ctx context.Context, ctrl *session.Controller, opts ...tea.ProgramOption) (Outcome, error) {
	m := NewModel(ctx, ctrl)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return Outcome{}, fmt.Errorf("dialog failed: %w", err)
	}
	if fm, ok := final.(*Model); ok {
		return fm.Outcome(), nil
	}
	return m.Outcome(), nil
}
