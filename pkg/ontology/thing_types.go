package ontology

import "sort"

// Reserved thing types that represent people. A "person" is a thing whose type
// is one of these; its properties carry role, email and permissions.
const (
	ThingTypeCreator        = "creator"
	ThingTypeAIClone        = "ai_clone"
	ThingTypeAudienceMember = "audience_member"
	ThingTypeOrganization   = "organization"
)

var thingTypes = []string{
	// Core (people as things)
	ThingTypeCreator, ThingTypeAIClone, ThingTypeAudienceMember, ThingTypeOrganization,
	// Business agents
	"strategy_agent", "research_agent", "marketing_agent", "sales_agent",
	"service_agent", "design_agent", "engineering_agent", "finance_agent",
	"legal_agent", "intelligence_agent",
	// Content
	"blog_post", "video", "podcast", "social_post", "email", "course", "lesson",
	// Products
	"digital_product", "membership", "consultation", "nft",
	// Community
	"community", "conversation", "message",
	// Token
	"token", "token_contract",
	// Knowledge
	"knowledge_item", "embedding",
	// Platform
	"website", "landing_page", "template", "livestream", "recording", "media_asset",
	// Business
	"payment", "subscription", "invoice", "metric", "insight", "prediction", "report",
	// Auth sessions
	"session", "oauth_account", "verification_token", "password_reset_token",
	// UI preferences
	"ui_preferences",
	// Marketing
	"notification", "email_campaign", "announcement", "referral", "campaign", "lead",
	// External integrations
	"external_agent", "external_workflow", "external_connection",
	// Protocol
	"mandate", "product",
	// Workflow
	"idea", "plan", "feature", "test", "design", "task",
}

var thingTypeSet = toSet(thingTypes)

// personTypes are the thing types served by the people dimension.
var personTypes = []string{
	ThingTypeCreator, ThingTypeAIClone, ThingTypeAudienceMember, ThingTypeOrganization,
}

var personTypeSet = toSet(personTypes)

// IsValidThingType reports whether v is a member of the thing type vocabulary.
func IsValidThingType(v string) bool {
	return thingTypeSet[v]
}

// IsPersonType reports whether v is one of the reserved person thing types.
func IsPersonType(v string) bool {
	return personTypeSet[v]
}

// ThingTypes returns the thing type vocabulary, sorted.
func ThingTypes() []string {
	return sorted(thingTypes)
}

// PersonTypes returns the reserved person thing types, sorted.
func PersonTypes() []string {
	return sorted(personTypes)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func sorted(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
