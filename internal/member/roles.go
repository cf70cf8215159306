package member

// Capability is a fine-grained action a role may perform. The table below is
// the single place role-to-capability mapping lives; both the HTTP layer and
// the access gate consult it instead of comparing role strings.
type Capability string

const (
	CapRecordTransaction Capability = "treasury.record"
	CapManageBylaws      Capability = "bylaws.manage"
	CapManageRoles       Capability = "members.manage-roles"
)

var grants = map[Role]map[Capability]struct{}{
	RoleAdmin: {
		CapRecordTransaction: {},
		CapManageBylaws:      {},
		CapManageRoles:       {},
	},
	RolePresident: {
		CapRecordTransaction: {},
		CapManageBylaws:      {},
		CapManageRoles:       {},
	},
}

// Can reports whether the role holds the capability.
func (r Role) Can(c Capability) bool {
	caps, ok := grants[r]
	if !ok {
		return false
	}
	_, ok = caps[c]
	return ok
}

// Approved reports whether the role has been admitted past guest status.
func (r Role) Approved() bool {
	return r == RoleMember || r == RoleAdmin || r == RolePresident
}
