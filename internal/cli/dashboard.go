package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDashboardCmd creates and returns a new dashboard command
func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the account dashboard",
		Long: `Show the landing-screen summary: profile, the next upcoming appointment,
and the unread notification count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			summary, err := rt.svc.Dashboard(cmd.Context(), fetchOpts()...)
			if err != nil {
				return fmt.Errorf("dashboard fetch failed: %w", err)
			}
			if summary == nil {
				return ErrAlreadyHandled
			}

			if jsonOutput {
				printJSON(map[string]any{
					"result": 1,
					"value":  summary,
				})
				return nil
			}

			fmt.Printf("Name:  %s\n", summary.Profile.Name)
			fmt.Printf("Email: %s\n", summary.Profile.Email)
			if summary.UnreadNotifications > 0 {
				noticeLabel.Printf("Unread notifications: %d\n", summary.UnreadNotifications)
			} else {
				fmt.Println("Unread notifications: 0")
			}
			if appt := summary.UpcomingAppointment; appt != nil {
				fmt.Println()
				fmt.Println("Next appointment:")
				fmt.Printf("  %s with %s at %s (%s)\n", appt.Subject, appt.Advisor, appt.StartsAt, appt.Status)
			}
			return nil
		},
	}
}
