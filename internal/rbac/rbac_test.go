package rbac

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"ADMIN", RoleAdmin},
		{"MODERATOR", RoleModerator},
		{"CIVIL_SERVANT", RoleCivilServant},
		{"CITIZEN", RoleCitizen},
		{"", RoleCitizen},
		{"admin", RoleCitizen},
		{"SUPERUSER", RoleCitizen},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCitizenPermissions(t *testing.T) {
	for _, p := range []Permission{
		PermViewCivilServants, PermCreateSupervision, PermCreateObligation,
		PermCreateKPI, PermEarnPoints, PermSpendPoints,
	} {
		if !Has(RoleCitizen, p) {
			t.Errorf("citizen missing %s", p)
		}
	}
	for _, p := range []Permission{PermModerateContent, PermManageUsers, PermUpdateOwnObligations} {
		if Has(RoleCitizen, p) {
			t.Errorf("citizen should not have %s", p)
		}
	}
}

func TestModeratorInheritsCitizen(t *testing.T) {
	if !Has(RoleModerator, PermModerateContent) {
		t.Fatal("moderator missing own permission")
	}
	// Everything a citizen can do, a moderator can do.
	for _, p := range PermissionsOf(RoleCitizen) {
		if !Has(RoleModerator, p) {
			t.Errorf("moderator missing inherited %s", p)
		}
	}
	if Has(RoleModerator, PermManageUsers) {
		t.Fatal("moderator should not have admin permissions")
	}
}

func TestAdminInheritsModeratorChain(t *testing.T) {
	for _, p := range PermissionsOf(RoleModerator) {
		if !Has(RoleAdmin, p) {
			t.Errorf("admin missing inherited %s", p)
		}
	}
	for _, p := range []Permission{PermManageUsers, PermManageCivilServants, PermManageSystemSettings, PermManageRewards} {
		if !Has(RoleAdmin, p) {
			t.Errorf("admin missing %s", p)
		}
	}
}

func TestCivilServantStandsAlone(t *testing.T) {
	if !Has(RoleCivilServant, PermUpdateOwnObligations) || !Has(RoleCivilServant, PermUpdateOwnKPIs) {
		t.Fatal("civil servant missing own permissions")
	}
	// Civil servants do not inherit the citizen set.
	if Has(RoleCivilServant, PermCreateSupervision) {
		t.Fatal("civil servant should not create supervisions")
	}
	if Has(RoleCivilServant, PermManageUsers) {
		t.Fatal("civil servant should not manage users")
	}
}

func TestHasAnyHasAll(t *testing.T) {
	if !HasAny(RoleCitizen, PermManageUsers, PermEarnPoints) {
		t.Fatal("HasAny should match PermEarnPoints")
	}
	if HasAll(RoleCitizen, PermEarnPoints, PermManageUsers) {
		t.Fatal("HasAll should fail on PermManageUsers")
	}
	if !HasAll(RoleAdmin, PermEarnPoints, PermManageUsers, PermModerateContent) {
		t.Fatal("admin should hold the full chain")
	}
}
