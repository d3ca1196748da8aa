package domain

// Well-known navigation targets.
const (
	PathLogin           = "/login"
	PathCompleteProfile = "/complete-profile"
)

// ProfileGate states what a route requires of the player profile-completion
// flag. Routes for non-player roles use ProfileAny.
type ProfileGate int

const (
	// ProfileAny imposes no profile-completion requirement.
	ProfileAny ProfileGate = iota
	// ProfileRequired blocks players whose profile is incomplete.
	ProfileRequired
	// ProfileExempt marks the completion page itself: players with a
	// completed profile are bounced back to their dashboard.
	ProfileExempt
)

// RouteConstraint is the declarative requirement attached to a navigable
// page, evaluated per navigation.
type RouteConstraint struct {
	Path         string
	AllowedRoles []Role
	Profile      ProfileGate
}

// Allows reports whether the role is in the constraint's allowed set.
func (rc RouteConstraint) Allows(r Role) bool {
	for _, allowed := range rc.AllowedRoles {
		if allowed == r {
			return true
		}
	}
	return false
}

// roleHomePaths is the fixed per-role landing page table. Redirect targets
// are data, not branching logic.
var roleHomePaths = map[Role]string{
	RoleAdmin:  "/admin/dashboard",
	RolePlayer: "/player/dashboard",
	RoleAgent:  "/agent/dashboard",
}

// HomePath returns the dashboard path for a role. ok is false for roles
// outside the known set.
func HomePath(r Role) (string, bool) {
	p, ok := roleHomePaths[r]
	return p, ok
}

// NavItem is one entry in a role's navigation menu.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var roleNav = map[Role][]NavItem{
	RoleAdmin: {
		{Label: "Dashboard", Path: "/admin/dashboard"},
		{Label: "Players", Path: "/admin/players"},
		{Label: "Teams", Path: "/admin/teams"},
		{Label: "Matches", Path: "/admin/matches"},
		{Label: "Statistics", Path: "/admin/stats"},
		{Label: "Users", Path: "/admin/users"},
	},
	RolePlayer: {
		{Label: "Dashboard", Path: "/player/dashboard"},
		{Label: "My Matches", Path: "/player/matches"},
		{Label: "My Statistics", Path: "/player/stats"},
	},
	RoleAgent: {
		{Label: "Dashboard", Path: "/agent/dashboard"},
		{Label: "My Players", Path: "/agent/players"},
		{Label: "Matches", Path: "/agent/matches"},
	},
}

// NavFor returns the navigation entries for a role; nil for unknown roles.
func NavFor(r Role) []NavItem {
	return roleNav[r]
}
