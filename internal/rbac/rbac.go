// Package rbac holds the static role/permission table for the platform.
package rbac

type Role string

const (
	RoleCitizen      Role = "CITIZEN"
	RoleModerator    Role = "MODERATOR"
	RoleAdmin        Role = "ADMIN"
	RoleCivilServant Role = "CIVIL_SERVANT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleModerator, RoleAdmin, RoleCivilServant:
		return true
	}
	return false
}

// ParseRole maps an identity-provider claim to a Role, defaulting to CITIZEN.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleModerator, RoleAdmin, RoleCivilServant:
		return Role(s)
	}
	return RoleCitizen
}

type Permission string

const (
	PermViewCivilServants Permission = "VIEW_CIVIL_SERVANTS"
	PermCreateSupervision Permission = "CREATE_SUPERVISION"
	PermCreateObligation  Permission = "CREATE_OBLIGATION"
	PermCreateKPI         Permission = "CREATE_KPI"
	PermUpdateOwnProfile  Permission = "UPDATE_OWN_PROFILE"
	PermEarnPoints        Permission = "EARN_POINTS"
	PermSpendPoints       Permission = "SPEND_POINTS"

	PermModerateContent Permission = "MODERATE_CONTENT"
	PermVerifyEvidence  Permission = "VERIFY_EVIDENCE"
	PermManageReports   Permission = "MANAGE_REPORTS"

	PermManageUsers          Permission = "MANAGE_USERS"
	PermManageCivilServants  Permission = "MANAGE_CIVIL_SERVANTS"
	PermManageSystemSettings Permission = "MANAGE_SYSTEM_SETTINGS"
	PermViewAnalytics        Permission = "VIEW_ANALYTICS"
	PermManageRewards        Permission = "MANAGE_REWARDS"

	PermUpdateOwnObligations Permission = "UPDATE_OWN_OBLIGATIONS"
	PermUpdateOwnKPIs        Permission = "UPDATE_OWN_KPIS"
	PermViewOwnSupervision   Permission = "VIEW_OWN_SUPERVISION"
)

// The table is built in two phases: each role lists only the permissions it
// adds, inheritance edges are explicit, and the transitive closure is computed
// once at init. Nothing here reads a partially built map.
var ownPermissions = map[Role][]Permission{
	RoleCitizen: {
		PermViewCivilServants,
		PermCreateSupervision,
		PermCreateObligation,
		PermCreateKPI,
		PermUpdateOwnProfile,
		PermEarnPoints,
		PermSpendPoints,
	},
	RoleModerator: {
		PermModerateContent,
		PermVerifyEvidence,
		PermManageReports,
	},
	RoleAdmin: {
		PermManageUsers,
		PermManageCivilServants,
		PermManageSystemSettings,
		PermViewAnalytics,
		PermManageRewards,
	},
	RoleCivilServant: {
		PermUpdateOwnObligations,
		PermUpdateOwnKPIs,
		PermViewOwnSupervision,
		PermUpdateOwnProfile,
	},
}

var inherits = map[Role]Role{
	RoleModerator: RoleCitizen,
	RoleAdmin:     RoleModerator,
}

var permissionSets = buildPermissionSets()

func buildPermissionSets() map[Role]map[Permission]struct{} {
	sets := make(map[Role]map[Permission]struct{}, len(ownPermissions))
	for role := range ownPermissions {
		set := make(map[Permission]struct{})
		for r := role; ; {
			for _, p := range ownPermissions[r] {
				set[p] = struct{}{}
			}
			parent, ok := inherits[r]
			if !ok {
				break
			}
			r = parent
		}
		sets[role] = set
	}
	return sets
}

func Has(role Role, p Permission) bool {
	_, ok := permissionSets[role][p]
	return ok
}

func HasAny(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if Has(role, p) {
			return true
		}
	}
	return false
}

func HasAll(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !Has(role, p) {
			return false
		}
	}
	return true
}

// PermissionsOf returns a copy of the role's effective permission set.
func PermissionsOf(role Role) []Permission {
	set := permissionSets[role]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}
