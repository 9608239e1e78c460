package profile

import "time"

type Role string

const (
	RoleWorker Role = "worker" // Restaurant staff clocking their own shifts
	RoleAdmin  Role = "admin"  // Manages shifts, employees and restaurant settings
)

// Profile mirrors the identity provider's user with the app-specific role.
type Profile struct {
	ID        string
	FullName  string
	Role      Role
	IsBanned  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin checks if the profile carries the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func IsValidRole(role string) bool {
	return Role(role) == RoleWorker || Role(role) == RoleAdmin
}
