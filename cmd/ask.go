package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) newAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt>...",
		Short: "Send one message and print the streamed reply",
		Long: `Send one message and print the streamed reply. The exit status is non-zero
when the reply fails or comes back empty.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			chat := a.newSession(store, newTerminalRenderer(a.out))
			_, err = chat.Send(cmd.Context(), strings.Join(args, " "))
			return err
		},
	}
}
