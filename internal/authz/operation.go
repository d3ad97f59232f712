package authz

// Operation is one declarative entry in the access rule table. The gate is
// the only component that interprets these flags; transport code just names
// the operation it fronts.
type Operation struct {
	Name string

	// Allowed is the closed role set permitted to perform the operation.
	Allowed []Role

	// RequireTenantScope demands that the target resource belongs to the
	// actor's tenant. Superadmins skip the check on their own operations.
	RequireTenantScope bool

	// RequireActiveSubscription gates the operation on the billing state of
	// the tenant-owning admin. Only admins are billed, so the check never
	// fires for other roles.
	RequireActiveSubscription bool

	// SkipActorBlockedCheck exempts the acting superadmin from the blocked
	// check: block/unblock targets a different account.
	SkipActorBlockedCheck bool
}

// Allows reports whether the role is inside the operation's role set.
func (op Operation) Allows(role Role) bool {
	for _, r := range op.Allowed {
		if r == role {
			return true
		}
	}
	return false
}

// The rule table. One entry per privileged operation; handlers reference
// these values instead of hard-coding role strings.
var (
	// OpLogin reuses the gate for the blocked and subscription checks that
	// guard session establishment; every role may attempt it.
	OpLogin = Operation{
		Name:                      "auth.login",
		Allowed:                   []Role{RoleSuperadmin, RoleAdmin, RoleManager, RoleStaff},
		RequireActiveSubscription: true,
	}

	OpCreateDashboard = Operation{
		Name:                      "dashboard.create",
		Allowed:                   []Role{RoleAdmin},
		RequireTenantScope:        true,
		RequireActiveSubscription: true,
	}
	OpViewDashboards = Operation{
		Name:                      "dashboard.view",
		Allowed:                   []Role{RoleAdmin, RoleManager, RoleStaff},
		RequireTenantScope:        true,
		RequireActiveSubscription: true,
	}
	OpCreateTeamMember = Operation{
		Name:                      "team.create",
		Allowed:                   []Role{RoleAdmin},
		RequireTenantScope:        true,
		RequireActiveSubscription: true,
	}
	OpListTeam = Operation{
		Name:                      "team.list",
		Allowed:                   []Role{RoleAdmin},
		RequireTenantScope:        true,
		RequireActiveSubscription: true,
	}
	OpDeleteTeamMember = Operation{
		Name:                      "team.delete",
		Allowed:                   []Role{RoleAdmin},
		RequireTenantScope:        true,
		RequireActiveSubscription: true,
	}
	OpViewProfile = Operation{
		Name:    "profile.view",
		Allowed: []Role{RoleSuperadmin, RoleAdmin, RoleManager, RoleStaff},
	}
	OpSetLastDashboard = Operation{
		Name:               "profile.last_dashboard",
		Allowed:            []Role{RoleSuperadmin, RoleAdmin, RoleManager, RoleStaff},
		RequireTenantScope: true,
	}

	OpListUsers = Operation{
		Name:    "super.users.list",
		Allowed: []Role{RoleSuperadmin},
	}
	OpListSubscriptions = Operation{
		Name:    "super.subscriptions.list",
		Allowed: []Role{RoleSuperadmin},
	}
	OpToggleSubscription = Operation{
		Name:    "super.subscriptions.toggle",
		Allowed: []Role{RoleSuperadmin},
	}
	OpExtendSubscription = Operation{
		Name:    "super.subscriptions.extend",
		Allowed: []Role{RoleSuperadmin},
	}
	OpBlockAdmin = Operation{
		Name:                  "super.users.block",
		Allowed:               []Role{RoleSuperadmin},
		SkipActorBlockedCheck: true,
	}
	OpViewAuditLogs = Operation{
		Name:    "super.audit.view",
		Allowed: []Role{RoleSuperadmin},
	}
)
