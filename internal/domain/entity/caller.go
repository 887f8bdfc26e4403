package entity

import "github.com/google/uuid"

// CallerRole is the closed set of roles the identity service issues.
type CallerRole string

const (
	CallerRolePatient  CallerRole = "patient"
	CallerRoleProvider CallerRole = "provider"
	CallerRolePharmacy CallerRole = "pharmacy"
	CallerRoleAdmin    CallerRole = "admin"
)

// Role IDs as seeded in the roles table.
const (
	RoleIDAdmin    = 1
	RoleIDDoctor   = 2
	RoleIDPatient  = 3
	RoleIDPharmacy = 4
)

var callerRoleByID = map[int]CallerRole{
	RoleIDAdmin:    CallerRoleAdmin,
	RoleIDDoctor:   CallerRoleProvider,
	RoleIDPatient:  CallerRolePatient,
	RoleIDPharmacy: CallerRolePharmacy,
}

// CallerRoleFromID maps a role ID from the identity token.
func CallerRoleFromID(roleID int) (CallerRole, bool) {
	role, ok := callerRoleByID[roleID]
	return role, ok
}

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID   uuid.UUID
	Role CallerRole
}

func (c Caller) IsAdmin() bool {
	return c.Role == CallerRoleAdmin
}

func (c Caller) IsPatient() bool {
	return c.Role == CallerRolePatient
}

func (c Caller) IsProvider() bool {
	return c.Role == CallerRoleProvider
}
