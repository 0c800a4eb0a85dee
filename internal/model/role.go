package model

// Role is the closed set of account roles. Visibility of pickup
// requests and access to admin endpoints branch on this value, always
// through a single dispatch point rather than ad hoc string checks.
type Role string

const (
	RoleResident  Role = "resident"  // creates pickup requests for their own e-waste
	RoleCollector Role = "collector" // claims and fulfils pickup requests
	RoleAdmin     Role = "admin"     // unrestricted visibility, manages user roles
)

// ParseRole maps a raw string onto a known Role. The boolean reports
// whether the input named one of the three valid roles.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleResident, RoleCollector, RoleAdmin:
		return Role(s), true
	}
	return "", false
}
