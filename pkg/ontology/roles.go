package ontology

const (
	RolePlatformOwner = "platform_owner"
	RoleOrgOwner      = "org_owner"
	RoleOrgUser       = "org_user"
	RoleCustomer      = "customer"
)

var roles = []string{RolePlatformOwner, RoleOrgOwner, RoleOrgUser, RoleCustomer}

var roleSet = toSet(roles)

// roleRank orders roles by privilege, highest first. Used for minimum-role
// authorization checks.
var roleRank = map[string]int{
	RolePlatformOwner: 4,
	RoleOrgOwner:      3,
	RoleOrgUser:       2,
	RoleCustomer:      1,
}

// IsValidRole reports whether v is a member of the role vocabulary.
func IsValidRole(v string) bool {
	return roleSet[v]
}

// Roles returns the role vocabulary, sorted.
func Roles() []string {
	return sorted(roles)
}

// RoleAtLeast reports whether role meets or exceeds the privilege of min.
// Unknown roles never satisfy any minimum.
func RoleAtLeast(role, min string) bool {
	return roleRank[role] >= roleRank[min] && roleRank[role] > 0
}
