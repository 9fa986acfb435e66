// Package store is the Postgres-backed provider. Every mutation runs the
// same pipeline: resolve identity, resolve scope, check permissions, validate,
// persist, then append an audit event and mirror it onto the change feed.
package store

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	appcontext "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/database"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
)

// GroupRepository is the persistence surface the store needs for groups.
type GroupRepository interface {
	Create(ctx context.Context, slug string, req models.CreateGroupRequest) (*models.Group, error)
	Get(ctx context.Context, tenantID, id string) (*models.Group, error)
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	List(ctx context.Context, tenantID string, filter models.GroupFilter) (*models.List[models.Group], error)
	Update(ctx context.Context, tenantID, id string, req models.UpdateGroupRequest) (*models.Group, error)
	Archive(ctx context.Context, tenantID, id string) error
}

// ThingRepository is the persistence surface for things, people included.
type ThingRepository interface {
	Create(ctx context.Context, groupID string, req models.CreateThingRequest) (*models.Thing, error)
	Get(ctx context.Context, groupID, id string) (*models.Thing, error)
	GetByUserID(ctx context.Context, groupID, userID string) (*models.Thing, error)
	GetByEmail(ctx context.Context, groupID, email string) (*models.Thing, error)
	List(ctx context.Context, groupID string, filter models.ThingFilter) (*models.List[models.Thing], error)
	ListPeople(ctx context.Context, groupID string, filter models.PersonFilter) (*models.List[models.Thing], error)
	Update(ctx context.Context, thing *models.Thing) error
	Archive(ctx context.Context, groupID, id string) error
}

// ConnectionRepository is the persistence surface for connections.
type ConnectionRepository interface {
	Create(ctx context.Context, groupID string, req models.CreateConnectionRequest) (*models.Connection, error)
	BatchCreate(ctx context.Context, groupID string, reqs []models.CreateConnectionRequest) ([]models.Connection, error)
	Get(ctx context.Context, groupID, id string) (*models.Connection, error)
	List(ctx context.Context, groupID string, filter models.ConnectionFilter) (*models.List[models.Connection], error)
	Delete(ctx context.Context, groupID, id string) error
}

// EventRepository is the persistence surface for the audit log.
type EventRepository interface {
	Record(ctx context.Context, groupID, actorID string, req models.RecordEventRequest) (*models.Event, error)
	List(ctx context.Context, groupID string, filter models.EventFilter) (*models.List[models.Event], error)
}

// KnowledgeRepository is the persistence surface for knowledge records.
type KnowledgeRepository interface {
	Create(ctx context.Context, groupID string, req models.CreateKnowledgeRequest) (*models.Knowledge, error)
	BulkCreate(ctx context.Context, groupID string, reqs []models.CreateKnowledgeRequest) ([]models.Knowledge, error)
	Get(ctx context.Context, groupID, id string) (*models.Knowledge, error)
	List(ctx context.Context, groupID string, filter models.KnowledgeFilter) (*models.List[models.Knowledge], error)
	SearchText(ctx context.Context, groupID, query string, limit int) ([]models.Knowledge, error)
	ListEmbedded(ctx context.Context, groupID string) ([]models.Knowledge, error)
	Update(ctx context.Context, record *models.Knowledge) error
	Delete(ctx context.Context, groupID, id string) error
}

// Publisher mirrors audit events onto the change feed.
type Publisher interface {
	PublishChangeEvent(ctx context.Context, event *kafka.ChangeEvent) error
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds the store's behavior switches.
type Config struct {
	// PermissionsEnabled turns on role checks for mutations.
	PermissionsEnabled bool
}

// Store implements the provider contract on Postgres.
type Store struct {
	db          database.DB
	groups      GroupRepository
	things      ThingRepository
	connections ConnectionRepository
	events      EventRepository
	knowledge   KnowledgeRepository
	publisher   Publisher
	embedder    Embedder
	logger      ectologger.Logger
	cfg         Config
}

// New builds a store. Publisher and embedder are optional; a nil publisher
// skips the change feed and a nil embedder makes Embed fail NOT_IMPLEMENTED.
func New(
	db database.DB,
	groups GroupRepository,
	things ThingRepository,
	connections ConnectionRepository,
	events EventRepository,
	knowledge KnowledgeRepository,
	publisher Publisher,
	embedder Embedder,
	logger ectologger.Logger,
	cfg Config,
) *Store {
	return &Store{
		db:          db,
		groups:      groups,
		things:      things,
		connections: connections,
		events:      events,
		knowledge:   knowledge,
		publisher:   publisher,
		embedder:    embedder,
		logger:      logger,
		cfg:         cfg,
	}
}

func (s *Store) Name() string {
	return "postgres"
}

func (s *Store) Healthy(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// identity resolves the caller from the request context. Every operation
// requires a tenant; mutations additionally use the actor for the audit trail.
func (s *Store) identity(ctx context.Context) (tenantID string, actorID string, err error) {
	tenantID = appcontext.GetTenantID(ctx)
	if tenantID == "" {
		return "", "", apperrors.NewUnauthorized("request has no tenant identity")
	}
	return tenantID, appcontext.GetUserID(ctx), nil
}

// requireRole enforces the minimum role for a mutation when permissions are
// enabled. The actor's role comes from their person record in the group.
func (s *Store) requireRole(ctx context.Context, tenantID, actorID, min, action, resource string) error {
	if !s.cfg.PermissionsEnabled {
		return nil
	}
	if actorID == "" {
		return apperrors.NewForbidden(action, resource, "")
	}

	person, err := s.things.GetByUserID(ctx, tenantID, actorID)
	if err != nil {
		return err
	}
	if person == nil {
		return apperrors.NewForbidden(action, resource, "")
	}

	role, _ := person.Property("role")
	roleStr, _ := role.(string)
	if !ontology.RoleAtLeast(roleStr, min) {
		return apperrors.NewForbidden(action, resource, roleStr)
	}
	return nil
}

// audit appends one event row for a completed mutation and mirrors it onto
// the change feed. Failures here are logged, never returned: the mutation
// already persisted and is not rolled back for a missing audit row.
func (s *Store) audit(ctx context.Context, groupID, actorID, eventType, targetID string, metadata map[string]any) {
	req := models.RecordEventRequest{
		Type:     eventType,
		Metadata: metadata,
	}
	if targetID != "" {
		req.TargetID = &targetID
	}

	if _, err := s.events.Record(ctx, groupID, actorID, req); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": eventType,
			"group_id":   groupID,
		}).Error("Failed to append audit event")
	}

	if s.publisher == nil {
		return
	}

	var meta json.RawMessage
	if metadata != nil {
		meta, _ = json.Marshal(metadata)
	}
	change := &kafka.ChangeEvent{
		EventType: eventType,
		GroupID:   groupID,
		ActorID:   actorID,
		TargetID:  targetID,
		Metadata:  meta,
	}
	if err := s.publisher.PublishChangeEvent(ctx, change); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": eventType,
			"group_id":   groupID,
		}).Error("Failed to publish change event")
	}
}
