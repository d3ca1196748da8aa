package domain

// Role determines which routes and navigation entries a user may reach.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
	RoleAgent  Role = "agent"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePlayer, RoleAgent:
		return true
	}
	return false
}

// AccountStatus is the approval state of an account. Only approved accounts
// can use the application.
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusApproved AccountStatus = "approved"
	StatusRejected AccountStatus = "rejected"
)

// Identity models the authenticated principal as held client-side.
//
// Role and Status are never computed or edited locally; they are only ever
// overwritten wholesale by a verified server response.
type Identity struct {
	ID               string        `json:"id"`
	Email            string        `json:"email"`
	FirstName        string        `json:"first_name"`
	LastName         string        `json:"last_name"`
	Role             Role          `json:"role"`
	Status           AccountStatus `json:"status"`
	ProfileCompleted bool          `json:"profile_completed"`
}

// IdentityPatch is a shallow partial update of the locally editable Identity
// fields (e.g. after a profile edit). Role and Status are deliberately absent.
type IdentityPatch struct {
	Email            *string
	FirstName        *string
	LastName         *string
	ProfileCompleted *bool
}

// Merge returns a copy of the identity with the patch applied.
func (i Identity) Merge(p IdentityPatch) Identity {
	if p.Email != nil {
		i.Email = *p.Email
	}
	if p.FirstName != nil {
		i.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		i.LastName = *p.LastName
	}
	if p.ProfileCompleted != nil {
		i.ProfileCompleted = *p.ProfileCompleted
	}
	return i
}
