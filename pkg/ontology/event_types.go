package ontology

// Event types recorded by the write pipeline itself.
const (
	EventTypeGroupCreated  = "group_created"
	EventTypeGroupUpdated  = "group_updated"
	EventTypeGroupArchived = "group_archived"

	EventTypeThingCreated   = "thing_created"
	EventTypeThingUpdated   = "thing_updated"
	EventTypeThingDeleted   = "thing_deleted"
	EventTypeThingPublished = "thing_published"
	EventTypeThingArchived  = "thing_archived"

	EventTypeConnectionCreated = "connection_created"
	EventTypeConnectionUpdated = "connection_updated"
	EventTypeConnectionDeleted = "connection_deleted"

	EventTypeKnowledgeCreated  = "knowledge_created"
	EventTypeKnowledgeUpdated  = "knowledge_updated"
	EventTypeKnowledgeDeleted  = "knowledge_deleted"
	EventTypeKnowledgeEmbedded = "knowledge_embedded"

	EventTypeUserJoined = "user_joined"
)

var eventTypes = []string{
	// Group events
	EventTypeGroupCreated, EventTypeGroupUpdated, EventTypeGroupArchived,
	// Thing events
	EventTypeThingCreated, EventTypeThingUpdated, EventTypeThingDeleted,
	EventTypeThingPublished, EventTypeThingArchived,
	// Connection events
	EventTypeConnectionCreated, EventTypeConnectionUpdated, EventTypeConnectionDeleted,
	// Knowledge events
	EventTypeKnowledgeCreated, EventTypeKnowledgeUpdated, EventTypeKnowledgeDeleted,
	EventTypeKnowledgeEmbedded,
	// Content events
	"content_published", "content_viewed", "content_liked", "content_commented",
	// Community events
	EventTypeUserJoined, "user_invited", "message_sent", "conversation_started",
	// Token events
	"tokens_minted", "tokens_burned", "tokens_transferred", "tokens_purchased",
	// Commerce events
	"payment_initiated", "payment_completed", "payment_failed",
	"subscription_created", "subscription_renewed", "subscription_cancelled",
	"purchase_completed",
	// Learning events
	"lesson_started", "lesson_completed", "course_enrolled", "course_completed",
	// AI events
	"clone_interacted", "ai_generated", "embedding_created",
	// Task events
	"task_created", "task_started", "task_completed", "task_failed",
	// Agent events
	"agent_started", "agent_completed", "agent_failed", "agent_executed",
	// Cycle events
	"cycle_started", "cycle_completed", "cycle_validated", "cycle_skipped",
	// Blockchain events (protocol carried in metadata)
	"transaction_sent", "transaction_confirmed", "transaction_failed",
	"block_created", "contract_deployed", "contract_called",
	"token_minted", "token_burned", "token_transferred",
	"proposal_created", "proposal_voted", "proposal_executed",
	"delegation_created", "delegation_revoked",
	// System events
	"hook_executed", "insight_generated", "prediction_made", "metric_calculated",
}

var eventTypeSet = toSet(eventTypes)

// IsValidEventType reports whether v is a member of the event type vocabulary.
func IsValidEventType(v string) bool {
	return eventTypeSet[v]
}

// EventTypes returns the event type vocabulary, sorted.
func EventTypes() []string {
	return sorted(eventTypes)
}
