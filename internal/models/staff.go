package models

import "time"

// StaffRole represents a user's role for one event
type StaffRole string

const (
	RoleOwner     StaffRole = "owner"
	RoleManager   StaffRole = "manager"
	RoleScanner   StaffRole = "scanner"
	RoleOrganizer StaffRole = "organizer"
	RoleNone      StaffRole = "none"
)

// Permission gates a single class of operation
type Permission string

const (
	PermCheckIn         Permission = "check_in"
	PermManualOverride  Permission = "manual_override"
	PermManageInventory Permission = "manage_inventory"
	PermViewRevenue     Permission = "view_revenue"
	PermManagePayouts   Permission = "manage_payouts"
)

// StaffGrant is an explicit role grant for (event, user). Owner is
// never granted explicitly; it is implied by event authorship.
type StaffGrant struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Role      StaffRole `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StaffAccess is the resolved capability set for (event, user)
type StaffAccess struct {
	Role        StaffRole    `json:"role"`
	Permissions []Permission `json:"permissions"`
}

// Can reports whether the resolved access includes the permission
func (a *StaffAccess) Can(p Permission) bool {
	for _, granted := range a.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// rolePermissions maps each role to the operations it may perform
var rolePermissions = map[StaffRole][]Permission{
	RoleOwner: {
		PermCheckIn, PermManualOverride, PermManageInventory,
		PermViewRevenue, PermManagePayouts,
	},
	RoleManager: {
		PermCheckIn, PermManualOverride, PermManageInventory,
		PermViewRevenue,
	},
	RoleOrganizer: {
		PermCheckIn, PermManageInventory, PermViewRevenue,
	},
	RoleScanner: {
		PermCheckIn,
	},
	RoleNone: {},
}

// PermissionsForRole returns the permission set attached to a role
func PermissionsForRole(role StaffRole) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
