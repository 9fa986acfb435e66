package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
)

// In-memory fakes for the repository interfaces. They reproduce the scoping
// rules the real repositories implement in SQL so the pipeline tests exercise
// the same visibility semantics.

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
}

type fakeGroupRepo struct {
	groups map[string]*models.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[string]*models.Group{}}
}

func (f *fakeGroupRepo) seed(id, parentID string) *models.Group {
	g := &models.Group{
		ID:     id,
		Slug:   id,
		Name:   id,
		Type:   ontology.GroupTypeOrganization,
		Status: ontology.GroupStatusActive,
	}
	if parentID != "" {
		g.ParentID = &parentID
	}
	f.groups[id] = g
	return g
}

func (f *fakeGroupRepo) visible(tenantID string, g *models.Group) bool {
	return g.ID == tenantID || (g.ParentID != nil && *g.ParentID == tenantID)
}

func (f *fakeGroupRepo) Create(ctx context.Context, slug string, req models.CreateGroupRequest) (*models.Group, error) {
	g := &models.Group{
		ID:        uuid.New().String(),
		Slug:      slug,
		Name:      req.Name,
		Type:      req.Type,
		ParentID:  req.ParentID,
		Status:    ontology.GroupStatusActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	f.groups[g.ID] = g
	return g, nil
}

func (f *fakeGroupRepo) Get(ctx context.Context, tenantID, id string) (*models.Group, error) {
	g, ok := f.groups[id]
	if !ok || !f.visible(tenantID, g) {
		return nil, nil
	}
	copied := *g
	return &copied, nil
}

func (f *fakeGroupRepo) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	for _, g := range f.groups {
		if g.Slug == slug {
			copied := *g
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeGroupRepo) List(ctx context.Context, tenantID string, filter models.GroupFilter) (*models.List[models.Group], error) {
	filter.Normalize()
	items := []models.Group{}
	for _, g := range f.groups {
		if f.visible(tenantID, g) {
			items = append(items, *g)
		}
	}
	return &models.List[models.Group]{Items: items, TotalCount: len(items), Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (f *fakeGroupRepo) Update(ctx context.Context, tenantID, id string, req models.UpdateGroupRequest) (*models.Group, error) {
	g, ok := f.groups[id]
	if !ok || !f.visible(tenantID, g) {
		return nil, nil
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Type != nil {
		g.Type = *req.Type
	}
	if req.Status != nil {
		g.Status = *req.Status
	}
	copied := *g
	return &copied, nil
}

func (f *fakeGroupRepo) Archive(ctx context.Context, tenantID, id string) error {
	g, ok := f.groups[id]
	if !ok || !f.visible(tenantID, g) {
		return fmt.Errorf("group %s not found", id)
	}
	g.Status = ontology.GroupStatusArchived
	return nil
}

type fakeThingRepo struct {
	things map[string]*models.Thing
}

func newFakeThingRepo() *fakeThingRepo {
	return &fakeThingRepo{things: map[string]*models.Thing{}}
}

func (f *fakeThingRepo) seed(groupID, thingType, name string, properties map[string]any) *models.Thing {
	props, _ := json.Marshal(properties)
	if properties == nil {
		props = json.RawMessage("{}")
	}
	t := &models.Thing{
		ID:         uuid.New().String(),
		GroupID:    groupID,
		Type:       thingType,
		Name:       name,
		Properties: props,
		Status:     ontology.StatusActive,
	}
	f.things[t.ID] = t
	return t
}

func (f *fakeThingRepo) Create(ctx context.Context, groupID string, req models.CreateThingRequest) (*models.Thing, error) {
	status := req.Status
	if status == "" {
		status = ontology.StatusActive
	}
	t := f.seed(groupID, req.Type, req.Name, req.Properties)
	t.Status = status
	copied := *t
	return &copied, nil
}

func (f *fakeThingRepo) Get(ctx context.Context, groupID, id string) (*models.Thing, error) {
	t, ok := f.things[id]
	if !ok || t.GroupID != groupID {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (f *fakeThingRepo) GetByUserID(ctx context.Context, groupID, userID string) (*models.Thing, error) {
	for _, t := range f.things {
		if t.GroupID != groupID || !ontology.IsPersonType(t.Type) {
			continue
		}
		if t.ID == userID {
			copied := *t
			return &copied, nil
		}
		if v, ok := t.Property("user_id"); ok && v == userID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeThingRepo) GetByEmail(ctx context.Context, groupID, email string) (*models.Thing, error) {
	for _, t := range f.things {
		if t.GroupID != groupID || !ontology.IsPersonType(t.Type) || t.Status == ontology.StatusArchived {
			continue
		}
		if v, ok := t.Property("email"); ok && v == email {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeThingRepo) List(ctx context.Context, groupID string, filter models.ThingFilter) (*models.List[models.Thing], error) {
	filter.Normalize()
	items := []models.Thing{}
	for _, t := range f.things {
		if t.GroupID != groupID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Status != "" {
			if t.Status != filter.Status {
				continue
			}
		} else if t.Status == ontology.StatusArchived {
			continue
		}
		items = append(items, *t)
	}
	return &models.List[models.Thing]{Items: items, TotalCount: len(items), Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (f *fakeThingRepo) ListPeople(ctx context.Context, groupID string, filter models.PersonFilter) (*models.List[models.Thing], error) {
	filter.Normalize()
	items := []models.Thing{}
	for _, t := range f.things {
		if t.GroupID != groupID || !ontology.IsPersonType(t.Type) || t.Status == ontology.StatusArchived {
			continue
		}
		if filter.Role != "" {
			if v, _ := t.Property("role"); v != filter.Role {
				continue
			}
		}
		items = append(items, *t)
	}
	return &models.List[models.Thing]{Items: items, TotalCount: len(items), Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (f *fakeThingRepo) Update(ctx context.Context, thing *models.Thing) error {
	stored, ok := f.things[thing.ID]
	if !ok || stored.GroupID != thing.GroupID {
		return fmt.Errorf("thing %s not found", thing.ID)
	}
	copied := *thing
	f.things[thing.ID] = &copied
	return nil
}

func (f *fakeThingRepo) Archive(ctx context.Context, groupID, id string) error {
	t, ok := f.things[id]
	if !ok || t.GroupID != groupID {
		return fmt.Errorf("thing %s not found", id)
	}
	t.Status = ontology.StatusArchived
	return nil
}

type fakeConnectionRepo struct {
	connections map[string]*models.Connection
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{connections: map[string]*models.Connection{}}
}

func (f *fakeConnectionRepo) tupleExists(groupID, from, to, connType string) bool {
	for _, c := range f.connections {
		if c.GroupID == groupID && c.FromThingID == from && c.ToThingID == to && c.Type == connType {
			return true
		}
	}
	return false
}

func (f *fakeConnectionRepo) Create(ctx context.Context, groupID string, req models.CreateConnectionRequest) (*models.Connection, error) {
	if f.tupleExists(groupID, req.FromThingID, req.ToThingID, req.Type) {
		return nil, fakeConflict(req)
	}
	c := &models.Connection{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		Type:        req.Type,
		FromThingID: req.FromThingID,
		ToThingID:   req.ToThingID,
		CreatedAt:   time.Now().UTC(),
	}
	f.connections[c.ID] = c
	copied := *c
	return &copied, nil
}

func (f *fakeConnectionRepo) BatchCreate(ctx context.Context, groupID string, reqs []models.CreateConnectionRequest) ([]models.Connection, error) {
	seen := map[string]bool{}
	for _, req := range reqs {
		key := req.FromThingID + "|" + req.ToThingID + "|" + req.Type
		if seen[key] || f.tupleExists(groupID, req.FromThingID, req.ToThingID, req.Type) {
			return nil, fakeConflict(req)
		}
		seen[key] = true
	}
	created := []models.Connection{}
	for _, req := range reqs {
		c, err := f.Create(ctx, groupID, req)
		if err != nil {
			return nil, err
		}
		created = append(created, *c)
	}
	return created, nil
}

func (f *fakeConnectionRepo) Get(ctx context.Context, groupID, id string) (*models.Connection, error) {
	c, ok := f.connections[id]
	if !ok || c.GroupID != groupID {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeConnectionRepo) List(ctx context.Context, groupID string, filter models.ConnectionFilter) (*models.List[models.Connection], error) {
	filter.Normalize()
	items := []models.Connection{}
	for _, c := range f.connections {
		if c.GroupID != groupID {
			continue
		}
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		items = append(items, *c)
	}
	return &models.List[models.Connection]{Items: items, TotalCount: len(items), Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (f *fakeConnectionRepo) Delete(ctx context.Context, groupID, id string) error {
	c, ok := f.connections[id]
	if !ok || c.GroupID != groupID {
		return fmt.Errorf("connection %s not found", id)
	}
	delete(f.connections, id)
	return nil
}

type fakeEventRepo struct {
	events []models.Event
}

func (f *fakeEventRepo) Record(ctx context.Context, groupID, actorID string, req models.RecordEventRequest) (*models.Event, error) {
	e := models.Event{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Type:      req.Type,
		ActorID:   actorID,
		TargetID:  req.TargetID,
		Timestamp: time.Now().UTC(),
	}
	f.events = append(f.events, e)
	return &e, nil
}

func (f *fakeEventRepo) List(ctx context.Context, groupID string, filter models.EventFilter) (*models.List[models.Event], error) {
	filter.Normalize()
	items := []models.Event{}
	for _, e := range f.events {
		if e.GroupID != groupID {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		items = append(items, e)
	}
	return &models.List[models.Event]{Items: items, TotalCount: len(items), Limit: filter.Limit, Offset: filter.Offset}, nil
}

type fakeKnowledgeRepo struct {
	records map[string]*models.Knowledge
}

func newFakeKnowledgeRepo() *fakeKnowledgeRepo {
	return &fakeKnowledgeRepo{records: map[string]*models.Knowledge{}}
}

func (f *fakeKnowledgeRepo) Create(ctx context.Context, groupID string, req models.CreateKnowledgeRequest) (*models.Knowledge, error) {
	k := &models.Knowledge{
		ID:            uuid.New().String(),
		GroupID:       groupID,
		SourceThingID: req.SourceThingID,
		Content:       req.Content,
		Type:          req.Type,
		Labels:        pq.StringArray(req.Labels),
	}
	k.Embedding.Data = req.Embedding
	f.records[k.ID] = k
	copied := *k
	return &copied, nil
}

func (f *fakeKnowledgeRepo) BulkCreate(ctx context.Context, groupID string, reqs []models.CreateKnowledgeRequest) ([]models.Knowledge, error) {
	created := []models.Knowledge{}
	for _, req := range reqs {
		k, err := f.Create(ctx, groupID, req)
		if err != nil {
			return nil, err
		}
		created = append(created, *k)
	}
	return created, nil
}

func (f *fakeKnowledgeRepo) Get(ctx context.Context, groupID, id string) (*models.Knowledge, error) {
	k, ok := f.records[id]
	if !ok || k.GroupID != groupID {
		return nil, nil
	}
	copied := *k
	return &copied, nil
}

func (f *fakeKnowledgeRepo) List(ctx context.Context, groupID string, filter models.KnowledgeFilter) (*models.List[models.Knowledge], error) {
	filter.Normalize()
	items := []models.Knowledge{}
	for _, k := range f.records {
		if k.GroupID == groupID {
			items = append(items, *k)
		}
	}
	return &models.List[models.Knowledge]{Items: items, TotalCount: len(items), Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (f *fakeKnowledgeRepo) SearchText(ctx context.Context, groupID, query string, limit int) ([]models.Knowledge, error) {
	items := []models.Knowledge{}
	for _, k := range f.records {
		if k.GroupID == groupID && containsFold(k.Content, query) {
			items = append(items, *k)
		}
	}
	return items, nil
}

func (f *fakeKnowledgeRepo) ListEmbedded(ctx context.Context, groupID string) ([]models.Knowledge, error) {
	items := []models.Knowledge{}
	for _, k := range f.records {
		if k.GroupID == groupID && len(k.Embedding.Data) > 0 {
			items = append(items, *k)
		}
	}
	return items, nil
}

func (f *fakeKnowledgeRepo) Update(ctx context.Context, record *models.Knowledge) error {
	stored, ok := f.records[record.ID]
	if !ok || stored.GroupID != record.GroupID {
		return fmt.Errorf("knowledge %s not found", record.ID)
	}
	copied := *record
	f.records[record.ID] = &copied
	return nil
}

func (f *fakeKnowledgeRepo) Delete(ctx context.Context, groupID, id string) error {
	k, ok := f.records[id]
	if !ok || k.GroupID != groupID {
		return fmt.Errorf("knowledge %s not found", id)
	}
	delete(f.records, id)
	return nil
}

type fakePublisher struct {
	published []*kafka.ChangeEvent
}

func (f *fakePublisher) PublishChangeEvent(ctx context.Context, event *kafka.ChangeEvent) error {
	f.published = append(f.published, event)
	return nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func fakeConflict(req models.CreateConnectionRequest) error {
	return apperrors.NewConflict(fmt.Sprintf("connection %s from %s to %s already exists", req.Type, req.FromThingID, req.ToThingID))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
