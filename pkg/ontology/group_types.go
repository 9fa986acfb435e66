package ontology

const (
	GroupTypeOrganization = "organization"
	GroupTypeBusiness     = "business"
	GroupTypeCommunity    = "community"
	GroupTypeTeam         = "team"
	GroupTypeProject      = "project"
	GroupTypePersonal     = "personal"
)

var groupTypes = []string{
	GroupTypeOrganization, GroupTypeBusiness, GroupTypeCommunity,
	GroupTypeTeam, GroupTypeProject, GroupTypePersonal,
}

var groupTypeSet = toSet(groupTypes)

// IsValidGroupType reports whether v is a member of the group type vocabulary.
func IsValidGroupType(v string) bool {
	return groupTypeSet[v]
}

// GroupTypes returns the group type vocabulary, sorted.
func GroupTypes() []string {
	return sorted(groupTypes)
}
