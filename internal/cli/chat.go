package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/advisio/advisio/pkg/api"
)

// newChatCmd creates the chat command group for the advisory thread
func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Read and send advisory chat messages",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List advisory chat messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			thread := rt.svc.ChatThread()
			if err := thread.Refresh(cmd.Context(), silentFetch); err != nil {
				return fmt.Errorf("chat fetch failed: %w", err)
			}
			printMessages(thread.Messages())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "send <message>",
		Short: "Send a message to the advisory chat",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			thread := rt.svc.ChatThread()
			if err := thread.Send(cmd.Context(), strings.Join(args, " ")); err != nil {
				return fmt.Errorf("send failed: %w", err)
			}

			if jsonOutput {
				printJSON(map[string]int{"result": 1})
			} else {
				okLabel.Println("✓ Message sent")
			}
			return nil
		},
	})

	return cmd
}

// printMessages renders a message list, newest last
func printMessages(msgs []api.Message) {
	if jsonOutput {
		printJSON(map[string]any{
			"result": 1,
			"value":  msgs,
		})
		return
	}

	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return
	}
	for _, m := range msgs {
		sender := m.Sender
		if m.Mine {
			sender = "you"
		}
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt, sender, m.Body)
	}
}
