package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newAppointmentsCmd creates the appointments command group
func newAppointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List appointments and use their chat threads",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your advisory appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			appts, err := rt.svc.Appointments(cmd.Context(), fetchOpts()...)
			if err != nil {
				return fmt.Errorf("appointments fetch failed: %w", err)
			}

			if jsonOutput {
				printJSON(map[string]any{
					"result": 1,
					"value":  appts,
				})
				return nil
			}

			if len(appts) == 0 {
				fmt.Println("No appointments.")
				return nil
			}
			for _, a := range appts {
				fmt.Printf("%s  %s with %s at %s (%s)\n", a.ID, a.Subject, a.Advisor, a.StartsAt, a.Status)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "chat <appointment-id>",
		Short: "List the chat messages of an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			thread := rt.svc.AppointmentThread(args[0])
			if err := thread.Refresh(cmd.Context(), silentFetch); err != nil {
				return fmt.Errorf("chat fetch failed: %w", err)
			}
			printMessages(thread.Messages())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "send <appointment-id> <message>",
		Short: "Send a message to an appointment chat",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			thread := rt.svc.AppointmentThread(args[0])
			if err := thread.Send(cmd.Context(), strings.Join(args[1:], " ")); err != nil {
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
