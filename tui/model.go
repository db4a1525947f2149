package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const failureText = "Sorry, something went wrong while answering. Please try again."

// Asker is the TUI-facing subset of the answerer.
type Asker interface {
	Answer(ctx context.Context, question string) (string, error)
}

type exchange struct {
	question string
	answer   string
	failed   bool
}

type answerMsg struct {
	question string
	answer   string
	err      error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx      context.Context
	asker    Asker
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	history  []exchange
	busy     bool
	ready    bool
}

func New(ctx context.Context, asker Asker) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about events in Prague and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		ctx:      ctx,
		asker:    asker,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := historyBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + 1 + ih // header, input line, status
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-bh)
		m.viewport.SetContent(m.renderHistory())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.input.Reset()
			return m, tea.Batch(m.spinner.Tick, m.ask(q))
		}

	case answerMsg:
		m.busy = false
		ex := exchange{question: msg.question, answer: msg.answer}
		if msg.err != nil {
			ex.failed = true
		}
		m.history = append(m.history, ex)
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.asker.Answer(m.ctx, question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Prague Events Chat")
	status := statusStyle.Render("Enter to ask, Esc to quit")
	if m.busy {
		status = m.spinner.View() + " Searching events..."
	}
	return header + "\n" +
		historyBoxStyle.Render(m.viewport.View()) + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		status
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "Ask a question about upcoming events in Prague."
	}
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + ex.question))
		b.WriteString("\n")
		if ex.failed {
			b.WriteString(errorStyle.Render(failureText))
			continue
		}
		b.WriteString(answerLabelStyle.Render("Answer:"))
		b.WriteString("\n")
		b.WriteString(ex.answer)
	}
	return b.String()
}

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	historyBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	answerLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinnerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)
