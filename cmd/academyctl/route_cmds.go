package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/academyhq/academy-client/internal/core/domain"
	"github.com/academyhq/academy-client/internal/core/service"
)

var checkCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Evaluate whether the current session may open a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		app.restore(cmd.Context())

		decision := app.guard.Evaluate(cmd.Context(), constraintFor(args[0]))
		switch decision.State {
		case service.StateGranted:
			fmt.Printf("Granted: %s\n", args[0])
		case service.StateRedirectHome:
			fmt.Printf("Redirected to %s\n", decision.Target)
		case service.StateRedirectLogin:
			if decision.Retryable {
				return fmt.Errorf("could not verify session (network error); try again")
			}
			return fmt.Errorf("not authorized: run `academyctl login` first")
		default:
			return fmt.Errorf("session still loading")
		}
		return nil
	},
}

// constraintFor maps a page path onto its route constraint: role areas by
// path prefix, the profile-completion page as the exempt special case, and
// anything else open to every authenticated role.
func constraintFor(path string) domain.RouteConstraint {
	rc := domain.RouteConstraint{Path: path}
	switch {
	case path == domain.PathCompleteProfile:
		rc.AllowedRoles = []domain.Role{domain.RolePlayer}
		rc.Profile = domain.ProfileExempt
	case strings.HasPrefix(path, "/admin/"):
		rc.AllowedRoles = []domain.Role{domain.RoleAdmin}
	case strings.HasPrefix(path, "/player/"):
		rc.AllowedRoles = []domain.Role{domain.RolePlayer}
		rc.Profile = domain.ProfileRequired
	case strings.HasPrefix(path, "/agent/"):
		rc.AllowedRoles = []domain.Role{domain.RoleAgent}
	default:
		rc.AllowedRoles = []domain.Role{domain.RoleAdmin, domain.RolePlayer, domain.RoleAgent}
	}
	return rc
}
