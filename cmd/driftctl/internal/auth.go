package cli

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/driftline/cloudclient/pkg/client"
)

func newLoginCommand() *cobra.Command {
	var email string
	var accountSlug string
	var accountID string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store an auth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			c, err := client.New(settings)
			if err != nil {
				return err
			}

			opts := client.LoginOptions{
				Email:       email,
				AccountSlug: accountSlug,
				AccountID:   accountID,
			}

			// Only prompt when the settings carry no password.
			if settings.Password == "" {
				password, err := promptPassword()
				if err != nil {
					return err
				}
				opts.Password = password
			}

			if err := c.Login(cmd.Context(), opts); err != nil {
				return err
			}

			fmt.Println("Logged in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email (defaults from settings)")
	cmd.Flags().StringVar(&accountSlug, "account-slug", "", "account slug")
	cmd.Flags().StringVar(&accountID, "account-id", "", "account ID")

	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored auth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			c, err := client.New(settings)
			if err != nil {
				return err
			}

			if err := c.Logout(); err != nil {
				return err
			}

			fmt.Println("Logged out.")
			return nil
		},
	}
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // newline after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}
