package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"smartdoc/internal/domain"
	"smartdoc/internal/service"
	"smartdoc/internal/textutil"
)

// DocumentPort is the console-facing subset of the document service.
type DocumentPort interface {
	List() []domain.DocumentInfo
	Summary(ctx context.Context, id int) (string, error)
	Ask(ctx context.Context, id int, question string) (service.Answer, error)
}

type summaryMsg struct {
	docID   int
	summary string
	err     error
}

type answerMsg struct {
	answer service.Answer
	err    error
}

// Model is the Bubble Tea model for the document console.
type Model struct {
	ctx       context.Context
	service   DocumentPort
	docs      []domain.DocumentInfo
	current   int
	summaries map[int]string
	input     textinput.Model
	viewport  viewport.Model
	answer    *service.Answer
	status    string
	cursor    int
	ready     bool
	busy      bool
}

// New creates a console over the documents already held by svc.
func New(ctx context.Context, svc DocumentPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:       ctx,
		service:   svc,
		docs:      svc.List(),
		summaries: map[int]string{},
		input:     ti,
		viewport:  vp,
		status:    "Tab: next document  Ctrl+S: summarize  Up/Down: context chunks",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and provider result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + document line
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderBody())
		return m, nil
	case summaryMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.summaries[msg.docID] = msg.summary
			m.status = "Summary ready."
		}
		m.viewport.SetContent(m.renderBody())
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.answer = nil
		} else {
			a := msg.answer
			m.answer = &a
			m.cursor = 0
			m.status = fmt.Sprintf("Answer for %q", a.Query)
		}
		m.viewport.SetContent(m.renderBody())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && len(m.docs) > 0 && !m.busy {
				m.busy = true
				m.status = "Thinking..."
				m.input.SetValue("")
				return m, m.ask(m.docs[m.current].ID, q)
			}
		case "ctrl+s":
			if len(m.docs) > 0 && !m.busy {
				m.busy = true
				m.status = "Summarizing..."
				return m, m.summarize(m.docs[m.current].ID)
			}
		case "tab":
			if len(m.docs) > 0 {
				m.current = (m.current + 1) % len(m.docs)
				m.answer = nil
				m.viewport.SetContent(m.renderBody())
				return m, nil
			}
		case "down":
			if m.answer != nil && len(m.answer.ContextChunks) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.ContextChunks)
				m.viewport.SetContent(m.renderBody())
				return m, nil
			}
		case "up":
			if m.answer != nil && len(m.answer.ContextChunks) > 0 {
				n := len(m.answer.ContextChunks)
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderBody())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(id int, q string) tea.Cmd {
	return func() tea.Msg {
		a, err := m.service.Ask(m.ctx, id, q)
		return answerMsg{answer: a, err: err}
	}
}

func (m Model) summarize(id int) tea.Cmd {
	return func() tea.Msg {
		s, err := m.service.Summary(m.ctx, id)
		return summaryMsg{docID: id, summary: s, err: err}
	}
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("SmartDoc")
	doc := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.documentLine())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + doc + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) documentLine() string {
	if len(m.docs) == 0 {
		return "No documents loaded."
	}
	d := m.docs[m.current]
	return fmt.Sprintf("[%d/%d] #%d %s  %d chars, %d chunks", m.current+1, len(m.docs), d.ID, d.Filename, d.TextLength, d.ChunkCount)
}

func (m Model) renderBody() string {
	if len(m.docs) == 0 {
		return "Nothing to show."
	}
	var b strings.Builder
	if s, ok := m.summaries[m.docs[m.current].ID]; ok {
		b.WriteString(summaryStyle.Render("Summary: ") + s + "\n\n")
	}
	if m.answer == nil {
		if b.Len() == 0 {
			return "No answer yet."
		}
		return b.String()
	}
	b.WriteString(highlightStyle.Render("Answer: ") + m.answer.Answer + "\n\n")
	if n := len(m.answer.ContextChunks); n > 0 {
		fmt.Fprintf(&b, "Context %d/%d\n\n", m.cursor+1, n)
		b.WriteString(highlightAnswer(m.answer.ContextChunks[m.cursor], m.answer.Answer))
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

// highlightAnswer marks the chunk sentence that overlaps the answer most.
func highlightAnswer(text, answer string) string {
	sentences := textutil.Sentences(text)
	if len(sentences) == 0 {
		return text
	}
	aTokens := textutil.TokenSet(answer, nil)
	if len(aTokens) == 0 || answer == domain.NoAnswer {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := textutil.Overlap(aTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestScore > 0 {
		sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	}
	return strings.Join(sentences, " ")
}
