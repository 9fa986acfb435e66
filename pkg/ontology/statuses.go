package ontology

// Thing lifecycle statuses. Transitions: draft -> active <-> published, and any
// status -> archived. Archived is terminal; there is no restore.
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Group statuses. Groups are never hard-deleted; they archive.
const (
	GroupStatusActive   = "active"
	GroupStatusArchived = "archived"
)

var statuses = []string{StatusDraft, StatusActive, StatusPublished, StatusArchived}

var statusSet = toSet(statuses)

var groupStatuses = []string{GroupStatusActive, GroupStatusArchived}

var groupStatusSet = toSet(groupStatuses)

// statusTransitions holds the allowed thing status transitions.
var statusTransitions = map[string]map[string]bool{
	StatusDraft:     {StatusActive: true, StatusArchived: true},
	StatusActive:    {StatusPublished: true, StatusArchived: true},
	StatusPublished: {StatusActive: true, StatusArchived: true},
	StatusArchived:  {},
}

// IsValidStatus reports whether v is a member of the thing status vocabulary.
func IsValidStatus(v string) bool {
	return statusSet[v]
}

// IsValidGroupStatus reports whether v is a member of the group status vocabulary.
func IsValidGroupStatus(v string) bool {
	return groupStatusSet[v]
}

// Statuses returns the thing status vocabulary, sorted.
func Statuses() []string {
	return sorted(statuses)
}

// GroupStatuses returns the group status vocabulary, sorted.
func GroupStatuses() []string {
	return sorted(groupStatuses)
}

// CanTransitionStatus reports whether a thing may move from one status to
// another. Archiving an already archived thing is treated as a no-op and
// allowed so the operation stays idempotent.
func CanTransitionStatus(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := statusTransitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}
