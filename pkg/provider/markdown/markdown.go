// Package markdown implements a read-only provider over a directory of
// markdown documents with YAML front matter. It exists for offline and
// standalone setups: content is authored as files, laid out by group and
// dimension, and served through the same contract as the live backends. Every
// write returns NOT_IMPLEMENTED.
//
// Layout:
//
//	content/
//	  groups/<group-id>.md
//	  <group-id>/things/<thing-id>.md
//	  <group-id>/people/<person-id>.md
//	  <group-id>/connections/<connection-id>.md
//	  <group-id>/events/<event-id>.md
//	  <group-id>/knowledge/<knowledge-id>.md
package markdown

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/lib/pq"
	"gopkg.in/yaml.v3"

	appcontext "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Config holds the content directory settings.
type Config struct {
	ContentDir string
}

// Provider serves records from markdown files.
type Provider struct {
	dir    string
	logger ectologger.Logger
}

// New creates the markdown provider. The content directory must exist.
func New(cfg Config, logger ectologger.Logger) (*Provider, error) {
	if cfg.ContentDir == "" {
		return nil, errors.NewConfiguration("markdown provider requires a content directory")
	}
	info, err := os.Stat(cfg.ContentDir)
	if err != nil || !info.IsDir() {
		return nil, errors.NewConfiguration(fmt.Sprintf("content directory %q is not readable", cfg.ContentDir))
	}
	return &Provider{dir: cfg.ContentDir, logger: logger}, nil
}

func (p *Provider) Name() string {
	return "markdown"
}

func (p *Provider) Healthy(ctx context.Context) error {
	if _, err := os.Stat(p.dir); err != nil {
		return errors.NewProvider("content directory is not readable").WithCause(err)
	}
	return nil
}

// document is one parsed markdown file: the raw front matter section plus the
// body below the closing delimiter.
type document struct {
	id      string
	front   []byte
	body    string
	modTime time.Time
}

func parseDocument(path string) (*document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	doc := &document{
		id:      strings.TrimSuffix(filepath.Base(path), ".md"),
		modTime: info.ModTime().UTC(),
	}

	content := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if strings.HasPrefix(content, "---\n") {
		rest := content[len("---\n"):]
		if end := strings.Index(rest, "\n---"); end >= 0 {
			doc.front = []byte(rest[:end])
			body := rest[end+len("\n---"):]
			doc.body = strings.TrimLeft(body, "\n")
			return doc, nil
		}
	}
	doc.body = content
	return doc, nil
}

func (p *Provider) readDimension(groupID, dimension string) ([]*document, error) {
	dir := filepath.Join(p.dir, groupID, dimension)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewProvider("failed to read content directory").WithCause(err)
	}

	docs := make([]*document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		doc, err := parseDocument(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.NewProvider("failed to read content file").WithCause(err)
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].id < docs[j].id })
	return docs, nil
}

func (p *Provider) readDocument(groupID, dimension, id string) (*document, error) {
	path := filepath.Join(p.dir, groupID, dimension, id+".md")
	doc, err := parseDocument(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewProvider("failed to read content file").WithCause(err)
	}
	return doc, nil
}

func (p *Provider) tenant(ctx context.Context) (string, error) {
	tenantID := appcontext.GetTenantID(ctx)
	if tenantID == "" {
		return "", errors.NewUnauthorized("missing tenant")
	}
	return tenantID, nil
}

func notWritable(operation string) error {
	return errors.NewNotImplemented(operation)
}

func paginate[T any](items []T, page models.Page) *models.List[T] {
	page.Normalize()
	total := len(items)
	start := page.Offset
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return &models.List[T]{
		Items:      items[start:end],
		TotalCount: total,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// groupFront is the front matter shape for a group document.
type groupFront struct {
	Slug      string     `yaml:"slug"`
	Name      string     `yaml:"name"`
	Type      string     `yaml:"type"`
	ParentID  *string    `yaml:"parent_id"`
	Status    string     `yaml:"status"`
	CreatedAt *time.Time `yaml:"created_at"`
}

func (p *Provider) groupFromDoc(doc *document) (*models.Group, error) {
	var front groupFront
	if len(doc.front) > 0 {
		if err := yaml.Unmarshal(doc.front, &front); err != nil {
			return nil, errors.NewProvider("malformed group document").WithCause(err)
		}
	}
	group := &models.Group{
		ID:        doc.id,
		Slug:      front.Slug,
		Name:      front.Name,
		Type:      front.Type,
		ParentID:  front.ParentID,
		Status:    front.Status,
		CreatedAt: doc.modTime,
		UpdatedAt: doc.modTime,
	}
	if front.CreatedAt != nil {
		group.CreatedAt = *front.CreatedAt
	}
	if group.Status == "" {
		group.Status = "active"
	}
	return group, nil
}

func (p *Provider) readGroups(ctx context.Context) ([]models.Group, error) {
	tenantID, err := p.tenant(ctx)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(p.dir, "groups")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewProvider("failed to read content directory").WithCause(err)
	}

	var groups []models.Group
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		doc, err := parseDocument(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.NewProvider("failed to read content file").WithCause(err)
		}
		group, err := p.groupFromDoc(doc)
		if err != nil {
			return nil, err
		}
		visible := group.ID == tenantID || (group.ParentID != nil && *group.ParentID == tenantID)
		if visible {
			groups = append(groups, *group)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (p *Provider) ListGroups(ctx context.Context, filter models.GroupFilter) (*models.List[models.Group], error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.ListGroups")
	defer span.End()

	groups, err := p.readGroups(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []models.Group
	for _, group := range groups {
		if filter.ParentID != nil && (group.ParentID == nil || *group.ParentID != *filter.ParentID) {
			continue
		}
		if filter.Type != "" && group.Type != filter.Type {
			continue
		}
		if filter.Status != "" && group.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(group.Name, filter.Search) {
			continue
		}
		filtered = append(filtered, group)
	}
	return paginate(filtered, filter.Page), nil
}

func (p *Provider) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.GetGroup")
	defer span.End()

	groups, err := p.readGroups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].ID == id {
			return &groups[i], nil
		}
	}
	return nil, errors.NewNotFound("group", id)
}

func (p *Provider) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (*models.Group, error) {
	return nil, notWritable("create group")
}

func (p *Provider) UpdateGroup(ctx context.Context, id string, req models.UpdateGroupRequest) (*models.Group, error) {
	return nil, notWritable("update group")
}

func (p *Provider) DeleteGroup(ctx context.Context, id string) error {
	return notWritable("delete group")
}

// personFront is the front matter shape for a person document.
type personFront struct {
	Type        string     `yaml:"type"`
	Name        string     `yaml:"name"`
	Email       string     `yaml:"email"`
	Role        string     `yaml:"role"`
	Permissions []string   `yaml:"permissions"`
	Status      string     `yaml:"status"`
	CreatedAt   *time.Time `yaml:"created_at"`
}

func personFromDoc(groupID string, doc *document) (*models.Person, error) {
	var front personFront
	if len(doc.front) > 0 {
		if err := yaml.Unmarshal(doc.front, &front); err != nil {
			return nil, errors.NewProvider("malformed person document").WithCause(err)
		}
	}
	person := &models.Person{
		ID:          doc.id,
		GroupID:     groupID,
		Type:        front.Type,
		Name:        front.Name,
		Email:       front.Email,
		Role:        front.Role,
		Permissions: front.Permissions,
		Status:      front.Status,
		CreatedAt:   doc.modTime,
		UpdatedAt:   doc.modTime,
	}
	if front.CreatedAt != nil {
		person.CreatedAt = *front.CreatedAt
	}
	if person.Type == "" {
		person.Type = "creator"
	}
	if person.Status == "" {
		person.Status = "active"
	}
	return person, nil
}

func (p *Provider) ListPeople(ctx context.Context, filter models.PersonFilter) (*models.List[models.Person], error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.ListPeople")
	defer span.End()

	tenantID, err := p.tenant(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := p.readDimension(tenantID, "people")
	if err != nil {
		return nil, err
	}

	var people []models.Person
	for _, doc := range docs {
		person, err := personFromDoc(tenantID, doc)
		if err != nil {
			return nil, err
		}
		if filter.Role != "" && person.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !containsFold(person.Name, filter.Search) && !containsFold(person.Email, filter.Search) {
			continue
		}
		people = append(people, *person)
	}
	return paginate(people, filter.Page), nil
}

func (p *Provider) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.GetPerson")
	defer span.End()

	tenantID, err := p.tenant(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := p.readDocument(tenantID, "people", id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.NewNotFound("person", id)
	}
	return personFromDoc(tenantID, doc)
}

func (p *Provider) CurrentPerson(ctx context.Context) (*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.CurrentPerson")
	defer span.End()

	userID := appcontext.GetUserID(ctx)
	if userID == "" {
		return nil, errors.NewUnauthorized("missing user")
	}
	return p.GetPerson(ctx, userID)
}

func (p *Provider) CreatePerson(ctx context.Context, req models.CreatePersonRequest) (*models.Person, error) {
	return nil, notWritable("create person")
}

func (p *Provider) UpdatePerson(ctx context.Context, id string, req models.UpdatePersonRequest) (*models.Person, error) {
	return nil, notWritable("update person")
}

func (p *Provider) DeletePerson(ctx context.Context, id string) error {
	return notWritable("delete person")
}

// thingFront is the front matter shape for a thing document.
type thingFront struct {
	Type       string         `yaml:"type"`
	Name       string         `yaml:"name"`
	Status     string         `yaml:"status"`
	Properties map[string]any `yaml:"properties"`
	CreatedAt  *time.Time     `yaml:"created_at"`
}

func thingFromDoc(groupID string, doc *document) (*models.Thing, error) {
	var front thingFront
	if len(doc.front) > 0 {
		if err := yaml.Unmarshal(doc.front, &front); err != nil {
			return nil, errors.NewProvider("malformed thing document").WithCause(err)
		}
	}

	properties := front.Properties
	if properties == nil {
		properties = map[string]any{}
	}
	if doc.body != "" {
		properties["description"] = strings.TrimSpace(doc.body)
	}
	encoded, err := json.Marshal(properties)
	if err != nil {
		return nil, errors.NewProvider("malformed thing properties").WithCause(err)
	}

	thing := &models.Thing{
		ID:         doc.id,
		GroupID:    groupID,
		Type:       front.Type,
		Name:       front.Name,
		Properties: encoded,
		Status:     front.Status,
		CreatedAt:  doc.modTime,
		UpdatedAt:  doc.modTime,
	}
	if front.CreatedAt != nil {
		thing.CreatedAt = *front.CreatedAt
	}
	if thing.Status == "" {
		thing.Status = "active"
	}
	return thing, nil
}

func (p *Provider) ListThings(ctx context.Context, filter models.ThingFilter) (*models.List[models.Thing], error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.ListThings")
	defer span.End()

	tenantID, err := p.tenant(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := p.readDimension(tenantID, "things")
	if err != nil {
		return nil, err
	}

	var things []models.Thing
	for _, doc := range docs {
		thing, err := thingFromDoc(tenantID, doc)
		if err != nil {
			return nil, err
		}
		if filter.Type != "" && thing.Type != filter.Type {
			continue
		}
		if filter.Status != "" && thing.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(thing.Name, filter.Search) {
			continue
		}
		things = append(things, *thing)
	}
	return paginate(things, filter.Page), nil
}

func (p *Provider) GetThing(ctx context.Context, id string) (*models.Thing, error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.GetThing")
	defer span.End()

	tenantID, err := p.tenant(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := p.readDocument(tenantID, "things", id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.NewNotFound("thing", id)
	}
	return thingFromDoc(tenantID, doc)
}

func (p *Provider) CreateThing(ctx context.Context, req models.CreateThingRequest) (*models.Thing, error) {
	return nil, notWritable("create thing")
}

func (p *Provider) UpdateThing(ctx context.Context, id string, req models.UpdateThingRequest) (*models.Thing, error) {
	return nil, notWritable("update thing")
}

func (p *Provider) DeleteThing(ctx context.Context, id string) error {
	return notWritable("delete thing")
}

// connectionFront is the front matter shape for a connection document.
type connectionFront struct {
	Type        string         `yaml:"type"`
	FromThingID string         `yaml:"from_thing_id"`
	ToThingID   string         `yaml:"to_thing_id"`
	Metadata    map[string]any `yaml:"metadata"`
	CreatedAt   *time.Time     `yaml:"created_at"`
}

func connectionFromDoc(groupID string, doc *document) (*models.Connection, error) {
	var front connectionFront
	if len(doc.front) > 0 {
		if err := yaml.Unmarshal(doc.front, &front); err != nil {
			return nil, errors.NewProvider("malformed connection document").WithCause(err)
		}
	}

	metadata := json.RawMessage("{}")
	if front.Metadata != nil {
		encoded, err := json.Marshal(front.Metadata)
		if err != nil {
			return nil, errors.NewProvider("malformed connection metadata").WithCause(err)
		}
		metadata = encoded
	}

	connection := &models.Connection{
		ID:          doc.id,
		GroupID:     groupID,
		Type:        front.Type,
		FromThingID: front.FromThingID,
		ToThingID:   front.ToThingID,
		Metadata:    metadata,
		CreatedAt:   doc.modTime,
	}
	if front.CreatedAt != nil {
		connection.CreatedAt = *front.CreatedAt
	}
	return connection, nil
}

func (p *Provider) ListConnections(ctx context.Context, filter models.ConnectionFilter) (*models.List[models.Connection], error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.ListConnections")
	defer span.End()

	tenantID, err := p.tenant(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := p.readDimension(tenantID, "connections")
	if err != nil {
		return nil, err
	}

	var connections []models.Connection
	for _, doc := range docs {
		connection, err := connectionFromDoc(tenantID, doc)
		if err != nil {
			return nil, err
		}
		if filter.Type != "" && connection.Type != filter.Type {
			continue
		}
		if filter.FromThingID != "" && connection.FromThingID != filter.FromThingID {
			continue
		}
		if filter.ToThingID != "" && connection.ToThingID != filter.ToThingID {
			continue
		}
		connections = append(connections, *connection)
	}
	return paginate(connections, filter.Page), nil
}

func (p *Provider) GetConnection(ctx context.Context, id string) (*models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.GetConnection")
	defer span.End()

	tenantID, err := p.tenant(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := p.readDocument(tenantID, "connections", id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.NewNotFound("connection", id)
	}
	return connectionFromDoc(tenantID, doc)
}

func (p *Provider) CreateConnection(ctx context.Context, req models.CreateConnectionRequest) (*models.Connection, error) {
	return nil, notWritable("create connection")
}

func (p *Provider) BatchCreateConnections(ctx context.Context, req models.BatchCreateConnectionsRequest) ([]models.Connection, error) {
	return nil, notWritable("batch create connections")
}

func (p *Provider) DeleteConnection(ctx context.Context, id string) error {
	return notWritable("delete connection")
}

// eventFront is the front matter shape for an event document.
type eventFront struct {
	Type      string         `yaml:"type"`
	ActorID   string         `yaml:"actor_id"`
	TargetID  *string        `yaml:"target_id"`
	Metadata  map[string]any `yaml:"metadata"`
	Timestamp *time.Time     `yaml:"timestamp"`
}

func eventFromDoc(groupID string, doc *document) (*models.Event, error) {
	var front eventFront
	if len(doc.front) > 0 {
		if err := yaml.Unmarshal(doc.front, &front); err != nil {
			return nil, errors.NewProvider("malformed event document").WithCause(err)
		}
	}

	metadata := json.RawMessage("{}")
	if front.Metadata != nil {
		encoded, err := json.Marshal(front.Metadata)
		if err != nil {
			return nil, errors.NewProvider("malformed event metadata").WithCause(err)
		}
		metadata = encoded
	}

	event := &models.Event{
		ID:        doc.id,
		GroupID:   groupID,
		Type:      front.Type,
		ActorID:   front.ActorID,
		TargetID:  front.TargetID,
		Metadata:  metadata,
		Timestamp: doc.modTime,
	}
	if front.Timestamp != nil {
		event.Timestamp = *front.Timestamp
	}
	return event, nil
}

func (p *Provider) ListEvents(ctx context.Context, filter models.EventFilter) (*models.List[models.Event], error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.ListEvents")
	defer span.End()

	tenantID, err := p.tenant(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := p.readDimension(tenantID, "events")
	if err != nil {
		return nil, err
	}

	var events []models.Event
	for _, doc := range docs {
		event, err := eventFromDoc(tenantID, doc)
		if err != nil {
			return nil, err
		}
		if filter.Type != "" && event.Type != filter.Type {
			continue
		}
		if filter.ActorID != "" && event.ActorID != filter.ActorID {
			continue
		}
		if filter.TargetID != "" && (event.TargetID == nil || *event.TargetID != filter.TargetID) {
			continue
		}
		if filter.StartTime != nil && event.Timestamp.Before(*filter.StartTime) {
			continue
		}
		if filter.EndTime != nil && event.Timestamp.After(*filter.EndTime) {
			continue
		}
		events = append(events, *event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.After(events[j].Timestamp) })
	return paginate(events, filter.Page), nil
}

func (p *Provider) RecordEvent(ctx context.Context, req models.RecordEventRequest) (*models.Event, error) {
	return nil, notWritable("record event")
}

// knowledgeFront is the front matter shape for a knowledge document. The body
// is the knowledge content.
type knowledgeFront struct {
	SourceThingID string     `yaml:"source_thing_id"`
	Type          string     `yaml:"type"`
	Labels        []string   `yaml:"labels"`
	CreatedAt     *time.Time `yaml:"created_at"`
}

func knowledgeFromDoc(groupID string, doc *document) (*models.Knowledge, error) {
	var front knowledgeFront
	if len(doc.front) > 0 {
		if err := yaml.Unmarshal(doc.front, &front); err != nil {
			return nil, errors.NewProvider("malformed knowledge document").WithCause(err)
		}
	}

	knowledge := &models.Knowledge{
		ID:            doc.id,
		GroupID:       groupID,
		SourceThingID: front.SourceThingID,
		Content:       strings.TrimSpace(doc.body),
		Type:          front.Type,
		Labels:        pq.StringArray(front.Labels),
		CreatedAt:     doc.modTime,
		UpdatedAt:     doc.modTime,
	}
	if front.CreatedAt != nil {
		knowledge.CreatedAt = *front.CreatedAt
	}
	if knowledge.Type == "" {
		knowledge.Type = "note"
	}
	return knowledge, nil
}

func (p *Provider) ListKnowledge(ctx context.Context, filter models.KnowledgeFilter) (*models.List[models.Knowledge], error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.ListKnowledge")
	defer span.End()

	tenantID, err := p.tenant(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := p.readDimension(tenantID, "knowledge")
	if err != nil {
		return nil, err
	}

	var records []models.Knowledge
	for _, doc := range docs {
		knowledge, err := knowledgeFromDoc(tenantID, doc)
		if err != nil {
			return nil, err
		}
		if filter.SourceThingID != "" && knowledge.SourceThingID != filter.SourceThingID {
			continue
		}
		if filter.Type != "" && knowledge.Type != filter.Type {
			continue
		}
		if filter.Label != "" && !hasLabel(knowledge.Labels, filter.Label) {
			continue
		}
		if filter.Search != "" && !containsFold(knowledge.Content, filter.Search) {
			continue
		}
		records = append(records, *knowledge)
	}
	return paginate(records, filter.Page), nil
}

func hasLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func (p *Provider) GetKnowledge(ctx context.Context, id string) (*models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.GetKnowledge")
	defer span.End()

	tenantID, err := p.tenant(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := p.readDocument(tenantID, "knowledge", id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.NewNotFound("knowledge", id)
	}
	return knowledgeFromDoc(tenantID, doc)
}

func (p *Provider) CreateKnowledge(ctx context.Context, req models.CreateKnowledgeRequest) (*models.Knowledge, error) {
	return nil, notWritable("create knowledge")
}

func (p *Provider) UpdateKnowledge(ctx context.Context, id string, req models.UpdateKnowledgeRequest) (*models.Knowledge, error) {
	return nil, notWritable("update knowledge")
}

func (p *Provider) DeleteKnowledge(ctx context.Context, id string) error {
	return notWritable("delete knowledge")
}

func (p *Provider) BulkCreateKnowledge(ctx context.Context, req models.BulkCreateKnowledgeRequest) ([]models.Knowledge, error) {
	return nil, notWritable("bulk create knowledge")
}

// SearchKnowledge is a case-insensitive text match over knowledge bodies.
// Matches score 1; the markdown backend has no embeddings.
func (p *Provider) SearchKnowledge(ctx context.Context, req models.KnowledgeSearchRequest) ([]models.KnowledgeSearchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "markdown.Provider.SearchKnowledge")
	defer span.End()

	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.NewValidation("query", "query is required")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = models.DefaultLimit
	}
	if limit > models.MaxLimit {
		limit = models.MaxLimit
	}

	list, err := p.ListKnowledge(ctx, models.KnowledgeFilter{
		Search: req.Query,
		Page:   models.Page{Limit: limit},
	})
	if err != nil {
		return nil, err
	}

	results := make([]models.KnowledgeSearchResult, 0, len(list.Items))
	for _, item := range list.Items {
		results = append(results, models.KnowledgeSearchResult{Knowledge: item, Score: 1})
	}
	return results, nil
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.NewNotImplemented("embed")
}
