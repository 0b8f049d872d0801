package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// newRegisterCmd creates and returns a new register command
func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new Advisio account",
		Long: `Register a new account with the Advisio server. The server sends an
activation code to the given email address; complete the signup with
"advisio activate <code>".`,
		RunE: runRegister,
	}

	cmd.Flags().String("email", "", "Account email address")
	cmd.Flags().String("passwd", "", "Password for the new account")
	cmd.Flags().String("name", "", "Display name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("passwd")
	return cmd
}

func runRegister(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	passwd, _ := cmd.Flags().GetString("passwd")
	name, _ := cmd.Flags().GetString("name")

	fields := url.Values{}
	fields.Set("email", email)
	fields.Set("password", passwd)
	if name != "" {
		fields.Set("name", name)
	}

	env, err := rt.svc.Register(cmd.Context(), fields)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if env == nil || !env.OK() {
		return ErrAlreadyHandled
	}

	if jsonOutput {
		printJSON(map[string]string{"status": "success"})
	} else {
		okLabel.Println("✓ Registration submitted")
		fmt.Println("Check your email for the activation code, then run \"advisio activate <code>\".")
	}
	return nil
}

// newRecoverCmd creates and returns a new recover command
func newRecoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Request a password recovery email",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			email, _ := cmd.Flags().GetString("email")
			env, err := rt.svc.RecoverPassword(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("recovery request failed: %w", err)
			}
			if env == nil || !env.OK() {
				return ErrAlreadyHandled
			}

			if jsonOutput {
				printJSON(map[string]string{"status": "success"})
			} else {
				okLabel.Println("✓ Recovery email sent")
			}
			return nil
		},
	}

	cmd.Flags().String("email", "", "Account email address")
	cmd.MarkFlagRequired("email")
	return cmd
}

// newActivateCmd creates and returns a new activate command
func newActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <code>",
		Short: "Activate a newly registered account",
		Long: `Activate an account with the code from the registration email. If the
server returns a session token, the CLI logs in immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			token, err := rt.svc.Activate(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("activation failed: %w", err)
			}

			if token != "" {
				if err := rt.mgr.Login(cmd.Context(), token); err != nil {
					return fmt.Errorf("storing session: %w", err)
				}
			}

			if jsonOutput {
				printJSON(map[string]interface{}{
					"status":    "success",
					"logged_in": token != "",
				})
			} else {
				okLabel.Println("✓ Account activated")
				if token != "" {
					fmt.Println("You are now logged in.")
				}
			}
			return nil
		},
	}
}
