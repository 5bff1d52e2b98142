package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Reads reports, triggers snapshots
	RoleEmployee Role = "employee" // Regular employee
	RoleDevice   Role = "device"   // Badge reader or gateway pushing scans
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID    string
	CompanyID string
	Role      Role
}

// IsOwner checks if the caller is company owner
func (c Claims) IsOwner() bool {
	return c.Role == RoleOwner
}

// IsManager checks if the caller is manager or owner
func (c Claims) IsManager() bool {
	return c.Role == RoleManager || c.Role == RoleOwner
}
