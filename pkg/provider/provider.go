// Package provider defines the entity store contract. Every backend, the
// Postgres store, the HTTP client, the markdown reader and the composite
// chain, implements Provider. Callers depend on this contract only and pick a
// backend through the factory.
package provider

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/models"
)

// GroupStore manages tenant containers. Delete archives, never removes.
type GroupStore interface {
	ListGroups(ctx context.Context, filter models.GroupFilter) (*models.List[models.Group], error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	CreateGroup(ctx context.Context, req models.CreateGroupRequest) (*models.Group, error)
	UpdateGroup(ctx context.Context, id string, req models.UpdateGroupRequest) (*models.Group, error)
	DeleteGroup(ctx context.Context, id string) error
}

// PeopleStore manages the people view over person-typed things.
type PeopleStore interface {
	ListPeople(ctx context.Context, filter models.PersonFilter) (*models.List[models.Person], error)
	GetPerson(ctx context.Context, id string) (*models.Person, error)
	CurrentPerson(ctx context.Context) (*models.Person, error)
	CreatePerson(ctx context.Context, req models.CreatePersonRequest) (*models.Person, error)
	UpdatePerson(ctx context.Context, id string, req models.UpdatePersonRequest) (*models.Person, error)
	DeletePerson(ctx context.Context, id string) error
}

// ThingStore manages the universal object dimension. Delete archives via
// status so references from the other dimensions stay valid.
type ThingStore interface {
	ListThings(ctx context.Context, filter models.ThingFilter) (*models.List[models.Thing], error)
	GetThing(ctx context.Context, id string) (*models.Thing, error)
	CreateThing(ctx context.Context, req models.CreateThingRequest) (*models.Thing, error)
	UpdateThing(ctx context.Context, id string, req models.UpdateThingRequest) (*models.Thing, error)
	DeleteThing(ctx context.Context, id string) error
}

// ConnectionStore manages directed relationships. Connections are immutable;
// there is no update.
type ConnectionStore interface {
	ListConnections(ctx context.Context, filter models.ConnectionFilter) (*models.List[models.Connection], error)
	GetConnection(ctx context.Context, id string) (*models.Connection, error)
	CreateConnection(ctx context.Context, req models.CreateConnectionRequest) (*models.Connection, error)
	BatchCreateConnections(ctx context.Context, req models.BatchCreateConnectionsRequest) ([]models.Connection, error)
	DeleteConnection(ctx context.Context, id string) error
}

// EventStore is append-only: list and record, nothing else.
type EventStore interface {
	ListEvents(ctx context.Context, filter models.EventFilter) (*models.List[models.Event], error)
	RecordEvent(ctx context.Context, req models.RecordEventRequest) (*models.Event, error)
}

// KnowledgeStore manages text records and their optional embeddings.
// Backends without an embedding model return NOT_IMPLEMENTED from Embed.
type KnowledgeStore interface {
	ListKnowledge(ctx context.Context, filter models.KnowledgeFilter) (*models.List[models.Knowledge], error)
	GetKnowledge(ctx context.Context, id string) (*models.Knowledge, error)
	CreateKnowledge(ctx context.Context, req models.CreateKnowledgeRequest) (*models.Knowledge, error)
	UpdateKnowledge(ctx context.Context, id string, req models.UpdateKnowledgeRequest) (*models.Knowledge, error)
	DeleteKnowledge(ctx context.Context, id string) error
	BulkCreateKnowledge(ctx context.Context, req models.BulkCreateKnowledgeRequest) ([]models.Knowledge, error)
	SearchKnowledge(ctx context.Context, req models.KnowledgeSearchRequest) ([]models.KnowledgeSearchResult, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Provider aggregates the six dimension stores.
type Provider interface {
	GroupStore
	PeopleStore
	ThingStore
	ConnectionStore
	EventStore
	KnowledgeStore

	// Name identifies the backend for logs and health output.
	Name() string

	// Healthy reports whether the backend can currently serve requests.
	Healthy(ctx context.Context) error
}
