package main

import (
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/triage/cmd/triage/ask"
	chatcmder "github.com/papercomputeco/triage/cmd/triage/chat"
	mcpcmder "github.com/papercomputeco/triage/cmd/triage/mcp"
	servecmder "github.com/papercomputeco/triage/cmd/triage/serve"
)

const rootLongDesc string = `triage answers customer questions with a team of chat agents.

A triage agent reads each request and hands it to a billing or refund
specialist backed by an Azure OpenAI deployment, then replies with one
combined answer.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "triage",
		Short:        "Agent triage front-end for Azure OpenAI",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
