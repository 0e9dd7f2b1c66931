package askcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/triage/pkg/chat"
	"github.com/papercomputeco/triage/pkg/client"
)

const askLongDesc string = `Ask a running triage server a single question.

The answer is rendered as markdown when stdout is a terminal, and printed
as plain text otherwise (or with --plain).

Examples:
  triage ask "Why was I charged twice this month?"
  triage ask --agent sample "What's on the menu?"
  triage ask --server http://10.0.0.5:8000 --conversation-id c-42 "Any update on my refund?"`

const askShortDesc string = "Ask a running triage server a question"

var metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

type askCommander struct {
	serverURL      string
	agent          string
	conversationID string
	plain          bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:8000", "Triage server URL")
	cmd.Flags().StringVarP(&cmder.agent, "agent", "a", "triage", "Agent to ask")
	cmd.Flags().StringVar(&cmder.conversationID, "conversation-id", "", "Conversation id to continue")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print the answer without markdown rendering")

	return cmd
}

func (c *askCommander) run(ctx context.Context, out io.Writer, question string) error {
	cl, err := client.New(c.serverURL)
	if err != nil {
		return err
	}

	resp, err := cl.Ask(ctx, c.agent, chat.ChatRequest{
		Messages:       []chat.ChatMessage{{Role: chat.RoleUser, Content: chat.Text(question)}},
		ConversationID: c.conversationID,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	answer := resp.Answer
	if !c.plain && isColorTerminal(out) {
		answer, err = renderMarkdown(answer, terminalWidth(out))
		if err != nil {
			return err
		}
		fmt.Fprint(out, answer)
		fmt.Fprintln(out, metaStyle.Render(fmt.Sprintf("conversation %s · message %s", resp.ConversationID, resp.MessageID)))
		return nil
	}

	fmt.Fprintln(out, answer)
	fmt.Fprintf(out, "\nconversation: %s\nmessage: %s\n", resp.ConversationID, resp.MessageID)
	return nil
}

func isColorTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

func terminalWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("could not create markdown renderer: %w", err)
	}
	return r.Render(md)
}
