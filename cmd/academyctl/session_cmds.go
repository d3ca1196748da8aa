package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/academyhq/academy-client/internal/core/domain"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the academy API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		identity, err := app.session.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			var unapproved *domain.AccountUnapprovedError
			switch {
			case errors.Is(err, domain.ErrInvalidCredentials):
				return fmt.Errorf("login failed: invalid credentials")
			case errors.As(err, &unapproved):
				if unapproved.Status == domain.StatusPending {
					return fmt.Errorf("login failed: account is awaiting approval")
				}
				return fmt.Errorf("login failed: account has been rejected")
			case domain.IsNetwork(err):
				return fmt.Errorf("login failed: could not reach server (%v)", err)
			default:
				return err
			}
		}

		fmt.Printf("Logged in as %s %s (%s)\n", identity.FirstName, identity.LastName, identity.Role)
		if home, ok := domain.HomePath(identity.Role); ok {
			fmt.Printf("Home: %s\n", home)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.session.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the authenticated identity and its navigation",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if !app.restore(cmd.Context()) {
			fmt.Println("Not logged in")
			return nil
		}

		identity, _ := app.session.Current()
		fmt.Printf("Logged in as %s %s <%s>\n", identity.FirstName, identity.LastName, identity.Email)
		fmt.Printf("Role:   %s\n", identity.Role)
		fmt.Printf("Status: %s\n", identity.Status)
		if identity.Role == domain.RolePlayer && !identity.ProfileCompleted {
			fmt.Printf("Profile incomplete: finish onboarding at %s\n", domain.PathCompleteProfile)
		}

		fmt.Println("Navigation:")
		for _, item := range domain.NavFor(identity.Role) {
			fmt.Printf("  %-16s %s\n", item.Label, item.Path)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
}
