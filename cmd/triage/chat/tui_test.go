package chatcmder

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/triage/pkg/chat"
)

type recordingAsker struct {
	requests []chat.ChatRequest
	answer   string
	err      error
}

func (r *recordingAsker) Ask(_ context.Context, _ string, req chat.ChatRequest) (*chat.ChatResponse, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &chat.ChatResponse{Answer: r.answer, ConversationID: req.ConversationID, MessageID: "m"}, nil
}

func typeText(m chatModel, text string) chatModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(chatModel)
}

func press(m chatModel, key tea.KeyType) (chatModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(chatModel), cmd
}

// deliver runs the command returned for a submitted question and feeds the
// resulting answer back into the model.
func deliver(m chatModel, cmd tea.Cmd) chatModel {
	var answer tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if out, ok := c().(answerMsg); ok {
				answer = out
			}
		}
	default:
		answer = msg
	}
	Expect(answer).To(BeAssignableToTypeOf(answerMsg{}))
	next, _ := m.Update(answer)
	return next.(chatModel)
}

var _ = Describe("Chat TUI", func() {
	var (
		asker *recordingAsker
		model chatModel
	)

	BeforeEach(func() {
		asker = &recordingAsker{answer: "Your refund is on its way."}
		model = newChatModel(context.Background(), asker, "triage", "conv-1234567890")
	})

	It("sends the transcript with the conversation id", func() {
		model = typeText(model, "where is my refund?")
		var cmd tea.Cmd
		model, cmd = press(model, tea.KeyEnter)
		Expect(model.waiting).To(BeTrue())
		Expect(model.input.Value()).To(BeEmpty())

		model = deliver(model, cmd)
		Expect(model.waiting).To(BeFalse())
		Expect(asker.requests).To(HaveLen(1))
		Expect(asker.requests[0].ConversationID).To(Equal("conv-1234567890"))
		Expect(model.transcript).To(Equal([]chat.ChatMessage{
			{Role: chat.RoleUser, Content: chat.Text("where is my refund?")},
			{Role: chat.RoleAssistant, Content: chat.Text("Your refund is on its way.")},
		}))
		Expect(model.View()).To(ContainSubstring("Your refund is on its way."))
	})

	It("resends the whole transcript on the next turn", func() {
		model = typeText(model, "first")
		var cmd tea.Cmd
		model, cmd = press(model, tea.KeyEnter)
		model = deliver(model, cmd)

		model = typeText(model, "second")
		model, cmd = press(model, tea.KeyEnter)
		model = deliver(model, cmd)

		Expect(asker.requests).To(HaveLen(2))
		Expect(asker.requests[1].Messages).To(HaveLen(3))
		Expect(model.transcript).To(HaveLen(4))
	})

	It("ignores empty input", func() {
		var cmd tea.Cmd
		model, cmd = press(model, tea.KeyEnter)
		Expect(model.waiting).To(BeFalse())
		Expect(model.transcript).To(BeEmpty())
		if cmd != nil {
			Expect(cmd()).NotTo(BeAssignableToTypeOf(answerMsg{}))
		}
	})

	It("shows errors and drops the unanswered question", func() {
		asker.err = errors.New("connection refused")

		model = typeText(model, "hello?")
		var cmd tea.Cmd
		model, cmd = press(model, tea.KeyEnter)
		model = deliver(model, cmd)

		Expect(model.err).To(MatchError("connection refused"))
		Expect(model.transcript).To(BeEmpty())
		Expect(model.View()).To(ContainSubstring("connection refused"))
	})

	It("quits on escape", func() {
		_, cmd := press(model, tea.KeyEsc)
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(tea.Quit()))
	})

	It("truncates the status line to the window width", func() {
		next, _ := model.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
		model = next.(chatModel)
		Expect(model.viewport.Height).To(Equal(6))
		Expect(model.status()).To(ContainSubstring("…"))
	})
})
