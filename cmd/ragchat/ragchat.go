// Package ragchatcmder is the root of the ragchat command tree.
package ragchatcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/ragchat/cmd/ragchat/ask"
	chatcmder "github.com/papercomputeco/ragchat/cmd/ragchat/chat"
	"github.com/papercomputeco/ragchat/cmd/ragchat/cmdutil"
	configcmder "github.com/papercomputeco/ragchat/cmd/ragchat/config"
	historycmder "github.com/papercomputeco/ragchat/cmd/ragchat/history"
	servecmder "github.com/papercomputeco/ragchat/cmd/ragchat/serve"
	sessioncmder "github.com/papercomputeco/ragchat/cmd/ragchat/session"
	uploadcmder "github.com/papercomputeco/ragchat/cmd/ragchat/upload"
	versioncmder "github.com/papercomputeco/ragchat/cmd/ragchat/version"
)

const ragchatLongDesc string = `ragchat is a terminal client for a retrieval-augmented chat backend.

Chat with the backend, upload PDFs into its knowledge base, and export
conversation history:
  ragchat chat                  Start an interactive chat
  ragchat ask "question"        Ask a single question
  ragchat upload file.pdf       Upload a PDF
  ragchat history               Print the current session's history
  ragchat serve                 Run the stand-in backend for local development`

const ragchatShortDesc string = "ragchat - chat with your documents"

func NewRagchatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ragchat",
		Short:         ragchatShortDesc,
		Long:          ragchatLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP(cmdutil.FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(cmdutil.FlagConfigDir, "", "Override the .ragchat/ directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(uploadcmder.NewUploadCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(sessioncmder.NewSessionCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
