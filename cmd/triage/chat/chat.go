package chatcmder

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/triage/pkg/client"
)

const chatLongDesc string = `Open an interactive chat with a running triage server.

The transcript is kept locally and sent with every turn under a single
conversation id. Press Esc or Ctrl+C to quit.

Examples:
  triage chat
  triage chat --agent sample --server http://localhost:8000`

const chatShortDesc string = "Chat interactively with a triage agent"

type chatCommander struct {
	serverURL      string
	agent          string
	conversationID string
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := client.New(cmder.serverURL)
			if err != nil {
				return err
			}
			if err := cl.Health(cmd.Context()); err != nil {
				return err
			}

			conversationID := cmder.conversationID
			if conversationID == "" {
				conversationID = uuid.NewString()
			}

			model := newChatModel(cmd.Context(), cl, cmder.agent, conversationID)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:8000", "Triage server URL")
	cmd.Flags().StringVarP(&cmder.agent, "agent", "a", "triage", "Agent to chat with")
	cmd.Flags().StringVar(&cmder.conversationID, "conversation-id", "", "Conversation id (generated when empty)")

	return cmd
}
