package chatcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/triage/pkg/chat"
)

const (
	defaultWidth         = 100
	defaultHeight        = 30
	inputCharLimit       = 4000
	reservedHeight       = 4
	minViewportHeight    = 5
	conversationIDLength = 8
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// asker is the part of client.Client the TUI needs.
type asker interface {
	Ask(ctx context.Context, agentName string, req chat.ChatRequest) (*chat.ChatResponse, error)
}

type answerMsg struct {
	resp *chat.ChatResponse
	err  error
}

// chatModel keeps the transcript client side and resends it every turn
// under one conversation id.
type chatModel struct {
	ctx            context.Context
	client         asker
	agent          string
	conversationID string

	transcript []chat.ChatMessage
	waiting    bool
	err        error

	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
}

func newChatModel(ctx context.Context, client asker, agent, conversationID string) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask about billing or refunds..."
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Width = defaultWidth - 3
	input.Prompt = "> "

	vp := viewport.New(defaultWidth, defaultHeight-reservedHeight)

	return chatModel{
		ctx:            ctx,
		client:         client,
		agent:          agent,
		conversationID: conversationID,
		input:          input,
		viewport:       vp,
		width:          defaultWidth,
		height:         defaultHeight,
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if cmd := m.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case tea.KeyPgUp:
			m.viewport.ViewUp()
		case tea.KeyPgDown:
			m.viewport.ViewDown()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-reservedHeight, minViewportHeight)
		m.input.Width = max(msg.Width-3, 10)
		m.refresh()

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.err = msg.err
			// drop the unanswered question so a retry does not send it twice
			m.transcript = m.transcript[:len(m.transcript)-1]
		} else {
			m.err = nil
			m.conversationID = msg.resp.ConversationID
			m.transcript = append(m.transcript, chat.ChatMessage{
				Role:    chat.RoleAssistant,
				Content: chat.Text(msg.resp.Answer),
			})
		}
		m.refresh()
	}

	if !m.waiting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *chatModel) submit() tea.Cmd {
	if m.waiting {
		return nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}

	m.input.Reset()
	m.transcript = append(m.transcript, chat.ChatMessage{Role: chat.RoleUser, Content: chat.Text(text)})
	m.waiting = true
	m.err = nil
	m.refresh()

	req := chat.ChatRequest{
		Messages:       append([]chat.ChatMessage(nil), m.transcript...),
		ConversationID: m.conversationID,
	}
	client, ctx, agent := m.client, m.ctx, m.agent
	return func() tea.Msg {
		resp, err := client.Ask(ctx, agent, req)
		return answerMsg{resp: resp, err: err}
	}
}

func (m *chatModel) refresh() {
	var b strings.Builder
	for _, msg := range m.transcript {
		if msg.Role == chat.RoleUser {
			b.WriteString(boldStyle.Render("You"))
		} else {
			b.WriteString(accentStyle.Render(m.agent))
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(m.viewport.Width).Render(msg.Content.Text))
		b.WriteString("\n\n")
	}
	if m.waiting {
		b.WriteString(dimStyle.Render("thinking..."))
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m chatModel) status() string {
	id := m.conversationID
	if len(id) > conversationIDLength {
		id = id[:conversationIDLength]
	}
	line := fmt.Sprintf("agent %s · conversation %s · %d messages · esc to quit", m.agent, id, len(m.transcript))
	if m.err != nil {
		return errorStyle.Render(ansi.Truncate("error: "+m.err.Error(), m.width, "…"))
	}
	return dimStyle.Render(ansi.Truncate(line, m.width, "…"))
}

func (m chatModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		"",
		m.input.View(),
		m.status(),
	)
}
