package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/advisio/advisio/internal/credstore"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Advisio server",
		Long: `Login to the Advisio server and store the session token in the local
credential store. Subsequent commands use the stored token until it expires
or you log out.

Example:
  advisio login --email me@example.com --passwd=mypassword`,
		RunE: runLogin,
	}

	cmd.Flags().String("email", "", "Account email address")
	cmd.Flags().String("passwd", "", "Password for authentication")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("passwd")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	passwd, _ := cmd.Flags().GetString("passwd")

	token, err := rt.svc.Login(cmd.Context(), email, passwd)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if cfg := GetConfig(); cfg != nil && cfg.PushToken != "" {
		rt.store.Save(credstore.KeyPushToken, cfg.PushToken)
	}

	if err := rt.mgr.Login(cmd.Context(), token); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	if jsonOutput {
		kv := map[string]interface{}{
			"status":  "success",
			"message": "Login successful",
		}
		printJSON(kv)
	} else {
		okLabel.Println("✓ Login successful")
	}

	return nil
}

// newLogoutCmd creates and returns a new logout command
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			rt.mgr.Logout()

			if jsonOutput {
				printJSON(map[string]int{"result": 1})
			} else {
				okLabel.Println("✓ Logged out")
			}
			return nil
		},
	}
}
