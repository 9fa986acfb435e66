package ontology

// Connection types referenced directly by pipeline code.
const (
	ConnectionTypeOwns      = "owns"
	ConnectionTypeCreatedBy = "created_by"
	ConnectionTypeMemberOf  = "member_of"
)

var connectionTypes = []string{
	// Ownership
	ConnectionTypeOwns, ConnectionTypeCreatedBy,
	// AI relationships
	"clone_of", "trained_on", "powers",
	// Content relationships
	"authored", "generated_by", "published_to", "part_of", "references",
	// Community relationships
	ConnectionTypeMemberOf, "following", "moderates", "participated_in",
	// Product relationships
	"holds_tokens", "enrolled_in", "purchased", "subscribed_to",
	// Learning relationships
	"completed", "taught_by", "mentored_by",
}

var connectionTypeSet = toSet(connectionTypes)

// IsValidConnectionType reports whether v is a member of the connection type
// vocabulary.
func IsValidConnectionType(v string) bool {
	return connectionTypeSet[v]
}

// ConnectionTypes returns the connection type vocabulary, sorted.
func ConnectionTypes() []string {
	return sorted(connectionTypes)
}
