package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session state and service availability",
	Long: `Show the current session state and which advisory services the server
has enabled for your account.

Examples:
  # Show session and service status
  advisio status

  # Show status in JSON format
  advisio status -j`,
	RunE: getStatus,
}

// getStatus handles retrieving session and service status information
func getStatus(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		if jsonOutput {
			kv := map[string]string{
				"version_cli": getCLIVersion(),
				"error":       err.Error(),
			}
			printJSON(kv)
		} else {
			fmt.Printf("advisio CLI %s\n", getCLIVersion())
			fmt.Println("Error: " + err.Error())
		}
		return ErrAlreadyHandled
	}

	rt.mgr.RefreshServicesStatus(cmd.Context())
	snap := rt.mgr.Snapshot()

	if jsonOutput {
		output := map[string]any{
			"result":        1,
			"version_cli":   getCLIVersion(),
			"state":         snap.State.String(),
			"authenticated": snap.Authenticated,
			"entitlements":  snap.Entitlements,
		}
		printJSON(output)
		return nil
	}

	fmt.Printf("advisio CLI %s\n", getCLIVersion())
	fmt.Printf("Session: %s\n", snap.State)
	if !snap.Authenticated {
		fmt.Println("Log in with \"advisio login\" to see service status.")
		return nil
	}

	fmt.Println()
	fmt.Println("Services:")
	fmt.Printf("  Advisory chat: %s\n", enabledLabel(snap.Entitlements.HasAdvisory))
	fmt.Printf("  Services:      %s\n", enabledLabel(snap.Entitlements.HasServicesEnabled))
	if snap.ProfilePictureURL != "" {
		fmt.Printf("Profile picture: %s\n", snap.ProfilePictureURL)
	}
	return nil
}

func enabledLabel(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

// init initializes the status command and adds it to the root command
func init() {
	rootCmd.AddCommand(statusCmd)
}
