package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcontext "github.com/Ramsey-B/fern/pkg/context"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
)

type fixture struct {
	store       *Store
	groups      *fakeGroupRepo
	things      *fakeThingRepo
	connections *fakeConnectionRepo
	events      *fakeEventRepo
	knowledge   *fakeKnowledgeRepo
	publisher   *fakePublisher
	embedder    *fakeEmbedder
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		groups:      newFakeGroupRepo(),
		things:      newFakeThingRepo(),
		connections: newFakeConnectionRepo(),
		events:      &fakeEventRepo{},
		knowledge:   newFakeKnowledgeRepo(),
		publisher:   &fakePublisher{},
		embedder:    &fakeEmbedder{vector: []float32{1, 0, 0}},
	}
	f.store = New(nil, f.groups, f.things, f.connections, f.events, f.knowledge, f.publisher, f.embedder, testLogger(), cfg)
	return f
}

func tenantCtx(tenantID, userID string) context.Context {
	ctx := appcontext.SetTenantID(context.Background(), tenantID)
	if userID != "" {
		ctx = appcontext.SetUserID(ctx, userID)
	}
	return ctx
}

func TestIdentityRequired(t *testing.T) {
	f := newFixture(Config{})
	ctx := context.Background()

	_, err := f.store.ListThings(ctx, models.ThingFilter{})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = f.store.CreateThing(ctx, models.CreateThingRequest{Type: ontology.ThingTypeCreator, Name: "x"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(Config{})
	f.groups.seed("tenant-a", "")
	f.groups.seed("tenant-b", "")
	secret := f.things.seed("tenant-b", ontology.ThingTypeCreator, "secret", nil)

	// A cross-tenant read is indistinguishable from a missing record.
	_, err := f.store.GetThing(tenantCtx("tenant-a", ""), secret.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, apperrors.IsForbidden(err))

	list, err := f.store.ListThings(tenantCtx("tenant-a", ""), models.ThingFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestCreateThingPipeline(t *testing.T) {
	f := newFixture(Config{})
	f.groups.seed("tenant-a", "")
	ctx := tenantCtx("tenant-a", "actor-1")

	thing, err := f.store.CreateThing(ctx, models.CreateThingRequest{
		Type: "course",
		Name: "Intro to Gardening",
	})
	require.NoError(t, err)
	assert.Equal(t, ontology.StatusActive, thing.Status)

	// Exactly one audit event and one change-feed message per mutation.
	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, ontology.EventTypeThingCreated, event.Type)
	assert.Equal(t, "tenant-a", event.GroupID)
	assert.Equal(t, "actor-1", event.ActorID)
	require.NotNil(t, event.TargetID)
	assert.Equal(t, thing.ID, *event.TargetID)

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, ontology.EventTypeThingCreated, f.publisher.published[0].EventType)
}

func TestCreateThingRejectsInvalidType(t *testing.T) {
	f := newFixture(Config{})
	ctx := tenantCtx("tenant-a", "actor-1")

	_, err := f.store.CreateThing(ctx, models.CreateThingRequest{Type: "spaceship", Name: "x"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	// Nothing persisted, nothing audited.
	assert.Empty(t, f.events.events)
	assert.Empty(t, f.publisher.published)
}

func TestUpdateThingStatusMachine(t *testing.T) {
	f := newFixture(Config{})
	thing := f.things.seed("tenant-a", "course", "course", nil)
	thing.Status = ontology.StatusDraft
	ctx := tenantCtx("tenant-a", "actor-1")

	// draft cannot jump straight to published
	published := ontology.StatusPublished
	_, err := f.store.UpdateThing(ctx, thing.ID, models.UpdateThingRequest{Status: &published})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	active := ontology.StatusActive
	updated, err := f.store.UpdateThing(ctx, thing.ID, models.UpdateThingRequest{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, ontology.StatusActive, updated.Status)

	updated, err = f.store.UpdateThing(ctx, thing.ID, models.UpdateThingRequest{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, ontology.StatusPublished, updated.Status)
}

func TestDeleteThingArchivesAndIsIdempotent(t *testing.T) {
	f := newFixture(Config{})
	thing := f.things.seed("tenant-a", "course", "course", nil)
	ctx := tenantCtx("tenant-a", "actor-1")

	require.NoError(t, f.store.DeleteThing(ctx, thing.ID))
	require.Len(t, f.events.events, 1)
	assert.Equal(t, ontology.EventTypeThingArchived, f.events.events[0].Type)

	// Still readable, still archived, and a repeat delete changes nothing.
	got, err := f.store.GetThing(ctx, thing.ID)
	require.NoError(t, err)
	assert.Equal(t, ontology.StatusArchived, got.Status)

	require.NoError(t, f.store.DeleteThing(ctx, thing.ID))
	assert.Len(t, f.events.events, 1)
}

func TestPeopleAreThings(t *testing.T) {
	f := newFixture(Config{})
	ctx := tenantCtx("tenant-a", "actor-1")

	person, err := f.store.CreatePerson(ctx, models.CreatePersonRequest{
		Name:  "Rose",
		Email: "rose@example.com",
		Role:  ontology.RoleOrgUser,
	})
	require.NoError(t, err)
	assert.Equal(t, ontology.ThingTypeCreator, person.Type)
	assert.Equal(t, "rose@example.com", person.Email)
	assert.Equal(t, ontology.RoleOrgUser, person.Role)

	// The person is reachable through the things dimension too.
	thing, err := f.store.GetThing(ctx, person.ID)
	require.NoError(t, err)
	email, ok := thing.Property("email")
	require.True(t, ok)
	assert.Equal(t, "rose@example.com", email)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, ontology.EventTypeUserJoined, f.events.events[0].Type)
}

func TestCreatePersonDuplicateEmail(t *testing.T) {
	f := newFixture(Config{})
	ctx := tenantCtx("tenant-a", "actor-1")

	_, err := f.store.CreatePerson(ctx, models.CreatePersonRequest{
		Name:  "Rose",
		Email: "rose@example.com",
		Role:  ontology.RoleOrgUser,
	})
	require.NoError(t, err)

	_, err = f.store.CreatePerson(ctx, models.CreatePersonRequest{
		Name:  "Rosalind",
		Email: "rose@example.com",
		Role:  ontology.RoleOrgUser,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicate(err))

	// The same email is fine in a different group.
	_, err = f.store.CreatePerson(tenantCtx("tenant-b", "actor-2"), models.CreatePersonRequest{
		Name:  "Rose",
		Email: "rose@example.com",
		Role:  ontology.RoleOrgUser,
	})
	require.NoError(t, err)
}

func TestCurrentPerson(t *testing.T) {
	f := newFixture(Config{})
	person := f.things.seed("tenant-a", ontology.ThingTypeCreator, "Rose", map[string]any{
		"email":   "rose@example.com",
		"role":    ontology.RoleOrgOwner,
		"user_id": "auth-123",
	})

	got, err := f.store.CurrentPerson(tenantCtx("tenant-a", "auth-123"))
	require.NoError(t, err)
	assert.Equal(t, person.ID, got.ID)

	_, err = f.store.CurrentPerson(tenantCtx("tenant-a", ""))
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestGetPersonRejectsNonPersonThing(t *testing.T) {
	f := newFixture(Config{})
	course := f.things.seed("tenant-a", "course", "course", nil)

	_, err := f.store.GetPerson(tenantCtx("tenant-a", ""), course.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestConnectionEndpointsMustExistInGroup(t *testing.T) {
	f := newFixture(Config{})
	a := f.things.seed("tenant-a", ontology.ThingTypeCreator, "a", nil)
	other := f.things.seed("tenant-b", ontology.ThingTypeCreator, "b", nil)
	ctx := tenantCtx("tenant-a", "actor-1")

	_, err := f.store.CreateConnection(ctx, models.CreateConnectionRequest{
		Type:        ontology.ConnectionTypeOwns,
		FromThingID: a.ID,
		ToThingID:   other.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBatchCreateConnectionsRejectsDuplicates(t *testing.T) {
	f := newFixture(Config{})
	a := f.things.seed("tenant-a", ontology.ThingTypeCreator, "a", nil)
	b := f.things.seed("tenant-a", "course", "b", nil)
	ctx := tenantCtx("tenant-a", "actor-1")

	item := models.CreateConnectionRequest{
		Type:        ontology.ConnectionTypeOwns,
		FromThingID: a.ID,
		ToThingID:   b.ID,
	}

	_, err := f.store.BatchCreateConnections(ctx, models.BatchCreateConnectionsRequest{
		Connections: []models.CreateConnectionRequest{item, item},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	// All-or-nothing: the first item must not have persisted.
	assert.Empty(t, f.connections.connections)

	_, err = f.store.CreateConnection(ctx, item)
	require.NoError(t, err)

	_, err = f.store.BatchCreateConnections(ctx, models.BatchCreateConnectionsRequest{
		Connections: []models.CreateConnectionRequest{item},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestPermissionsEnforced(t *testing.T) {
	f := newFixture(Config{PermissionsEnabled: true})
	f.things.seed("tenant-a", ontology.ThingTypeCreator, "Viewer", map[string]any{
		"role":    ontology.RoleCustomer,
		"user_id": "viewer-1",
	})
	f.things.seed("tenant-a", ontology.ThingTypeCreator, "Owner", map[string]any{
		"role":    ontology.RoleOrgOwner,
		"user_id": "owner-1",
	})

	_, err := f.store.CreateThing(tenantCtx("tenant-a", "viewer-1"), models.CreateThingRequest{
		Type: "course",
		Name: "course",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))

	_, err = f.store.CreateThing(tenantCtx("tenant-a", "owner-1"), models.CreateThingRequest{
		Type: "course",
		Name: "course",
	})
	require.NoError(t, err)
}

func TestGroupArchiveIsTerminal(t *testing.T) {
	f := newFixture(Config{})
	f.groups.seed("tenant-a", "")
	child := f.groups.seed("child", "tenant-a")
	ctx := tenantCtx("tenant-a", "actor-1")

	require.NoError(t, f.store.DeleteGroup(ctx, child.ID))
	require.Len(t, f.events.events, 1)

	// Archiving twice is a quiet no-op.
	require.NoError(t, f.store.DeleteGroup(ctx, child.ID))
	assert.Len(t, f.events.events, 1)

	name := "renamed"
	_, err := f.store.UpdateGroup(ctx, child.ID, models.UpdateGroupRequest{Name: &name})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestRecordEventValidatesVocabulary(t *testing.T) {
	f := newFixture(Config{})
	ctx := tenantCtx("tenant-a", "actor-1")

	_, err := f.store.RecordEvent(ctx, models.RecordEventRequest{Type: "made_up_event"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	event, err := f.store.RecordEvent(ctx, models.RecordEventRequest{Type: "lesson_completed"})
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", event.GroupID)
	assert.Equal(t, "actor-1", event.ActorID)
	require.Len(t, f.publisher.published, 1)
}

func TestKnowledgeSearchSemantic(t *testing.T) {
	f := newFixture(Config{})
	source := f.things.seed("tenant-a", "course", "course", nil)
	ctx := tenantCtx("tenant-a", "actor-1")

	f.embedder.vector = []float32{1, 0, 0}
	_, err := f.store.CreateKnowledge(ctx, models.CreateKnowledgeRequest{
		SourceThingID: source.ID,
		Content:       "gardening basics",
	})
	require.NoError(t, err)

	results, err := f.store.SearchKnowledge(ctx, models.KnowledgeSearchRequest{Query: "plants"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestKnowledgeSearchFallsBackToText(t *testing.T) {
	f := newFixture(Config{})
	source := f.things.seed("tenant-a", "course", "course", nil)
	ctx := tenantCtx("tenant-a", "actor-1")

	f.store.embedder = nil
	_, err := f.store.CreateKnowledge(ctx, models.CreateKnowledgeRequest{
		SourceThingID: source.ID,
		Content:       "Gardening Basics",
	})
	require.NoError(t, err)

	results, err := f.store.SearchKnowledge(ctx, models.KnowledgeSearchRequest{Query: "gardening"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Score)

	_, err = f.store.Embed(ctx, "anything")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotImplemented(err))
}

func TestUpdateKnowledgeDropsStaleEmbedding(t *testing.T) {
	f := newFixture(Config{})
	source := f.things.seed("tenant-a", "course", "course", nil)
	ctx := tenantCtx("tenant-a", "actor-1")

	record, err := f.store.CreateKnowledge(ctx, models.CreateKnowledgeRequest{
		SourceThingID: source.ID,
		Content:       "old content",
		Embedding:     []float32{0, 1, 0},
	})
	require.NoError(t, err)

	f.store.embedder = nil
	content := "new content"
	updated, err := f.store.UpdateKnowledge(ctx, record.ID, models.UpdateKnowledgeRequest{Content: &content})
	require.NoError(t, err)
	assert.Empty(t, updated.Embedding.Data)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp", "acme-corp"},
		{"  Already-Slugged  ", "already-slugged"},
		{"Weird!!Chars##Here", "weird-chars-here"},
		{"trailing punctuation!", "trailing-punctuation"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in))
	}
}
