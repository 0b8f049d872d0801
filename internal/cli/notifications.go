package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newNotificationsCmd creates the notifications command group
func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications and mark them read",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			items, err := rt.svc.Notifications(cmd.Context(), fetchOpts()...)
			if err != nil {
				return fmt.Errorf("notifications fetch failed: %w", err)
			}

			if jsonOutput {
				printJSON(map[string]any{
					"result": 1,
					"value":  items,
				})
				return nil
			}

			if len(items) == 0 {
				fmt.Println("No notifications.")
				return nil
			}
			for _, n := range items {
				marker := " "
				if !n.Read {
					marker = "*"
				}
				fmt.Printf("%s %s  %s: %s\n", marker, n.ID, n.Title, n.Body)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			if err := rt.svc.MarkNotificationRead(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("mark read failed: %w", err)
			}

			if jsonOutput {
				printJSON(map[string]int{"result": 1})
			} else {
				okLabel.Println("✓ Marked read")
			}
			return nil
		},
	})

	return cmd
}
