// Package httpapi implements the provider contract against a remote service
// exposing the same REST surface. Responses use the standard envelope; remote
// failures are mapped back into the error taxonomy. Reads can be cached in
// redis when a cache client is supplied.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	appcontext "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/redis"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Config holds the remote backend settings.
type Config struct {
	BaseURL  string
	APIKey   string
	CacheTTL time.Duration
}

// Provider talks to a remote fern-compatible API.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	cache  *redis.Client
	logger ectologger.Logger
}

// New creates the HTTP provider. cache may be nil to disable read caching.
func New(cfg Config, client *httpclient.Client, cache *redis.Client, logger ectologger.Logger) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.NewConfiguration("http provider requires a base url")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Provider{
		cfg:    cfg,
		client: client,
		cache:  cache,
		logger: logger,
	}, nil
}

func (p *Provider) Name() string {
	return "http"
}

// Healthy checks the remote liveness endpoint.
func (p *Provider) Healthy(ctx context.Context) error {
	resp, err := p.client.DoJSON(ctx, http.MethodGet, p.cfg.BaseURL+"/healthz", nil, nil)
	if err != nil {
		return errors.NewProvider("backend unreachable").WithCause(err)
	}
	if !httpclient.IsSuccessStatus(resp.StatusCode) {
		return errors.NewProvider(fmt.Sprintf("backend unhealthy: status %d", resp.StatusCode))
	}
	return nil
}

// envelope mirrors the transport response shape with the data left raw.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   *models.ErrorBody `json:"error"`
}

func (p *Provider) headers(ctx context.Context) map[string]string {
	headers := make(map[string]string)
	if tenantID := appcontext.GetTenantID(ctx); tenantID != "" {
		headers[middleware.HeaderTenantID] = tenantID
	}
	if userID := appcontext.GetUserID(ctx); userID != "" {
		headers[middleware.HeaderUserID] = userID
	}
	if p.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + p.cfg.APIKey
	}
	return headers
}

// call issues a request and decodes the envelope data into out when non-nil.
func (p *Provider) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := p.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := p.client.DoJSON(ctx, method, target, p.headers(ctx), body)
	if err != nil {
		return errors.NewProvider("backend request failed").WithCause(err)
	}

	var env envelope
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			return errors.NewProvider("backend returned a malformed response").WithCause(err)
		}
	}

	if !httpclient.IsSuccessStatus(resp.StatusCode) || !env.Success {
		message := fmt.Sprintf("backend returned status %d", resp.StatusCode)
		if env.Error != nil && env.Error.Message != "" {
			message = env.Error.Message
		}
		mapped := errors.FromHTTPStatus(resp.StatusCode, message)
		if env.Error != nil && env.Error.Code != "" {
			mapped = mapped.WithMeta("backend_code", env.Error.Code)
		}
		return mapped
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.NewProvider("backend returned malformed data").WithCause(err)
		}
	}
	return nil
}

func (p *Provider) observe(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ProviderOperationsTotal.WithLabelValues(p.Name(), operation, status).Inc()
}

func (p *Provider) cacheKey(ctx context.Context, dimension, suffix string) string {
	return fmt.Sprintf("fern:httpapi:%s:%s:%s", appcontext.GetTenantID(ctx), dimension, suffix)
}

// cachedGet serves a single-record read through the cache when enabled.
func (p *Provider) cachedGet(ctx context.Context, dimension, id, path string, out any) error {
	if p.cache == nil || p.cfg.CacheTTL <= 0 {
		return p.call(ctx, http.MethodGet, path, nil, nil, out)
	}

	key := p.cacheKey(ctx, dimension, id)
	if err := p.cache.GetJSON(ctx, key, out); err == nil {
		metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
		return nil
	} else if err != redis.ErrCacheMiss {
		p.logger.WithContext(ctx).WithError(err).Warn("Cache read failed")
	}
	metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()

	if err := p.call(ctx, http.MethodGet, path, nil, nil, out); err != nil {
		return err
	}
	if err := p.cache.SetJSON(ctx, key, out, p.cfg.CacheTTL); err != nil {
		p.logger.WithContext(ctx).WithError(err).Warn("Cache write failed")
	}
	return nil
}

// invalidate drops every cached read for a dimension in the caller's tenant.
func (p *Provider) invalidate(ctx context.Context, dimension string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.DelPattern(ctx, p.cacheKey(ctx, dimension, "*")); err != nil {
		p.logger.WithContext(ctx).WithError(err).Warn("Cache invalidation failed")
	}
}

func pageQuery(query url.Values, page models.Page) {
	if page.Limit > 0 {
		query.Set("limit", strconv.Itoa(page.Limit))
	}
	if page.Offset > 0 {
		query.Set("offset", strconv.Itoa(page.Offset))
	}
	if page.Sort != "" {
		query.Set("sort", page.Sort)
	}
	if page.Order != "" {
		query.Set("order", page.Order)
	}
}

func (p *Provider) ListGroups(ctx context.Context, filter models.GroupFilter) (result *models.List[models.Group], err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.ListGroups")
	defer span.End()
	defer func() { p.observe("groups.list", err) }()

	query := url.Values{}
	if filter.ParentID != nil {
		query.Set("parent_id", *filter.ParentID)
	}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	pageQuery(query, filter.Page)

	result = &models.List[models.Group]{}
	if err = p.call(ctx, http.MethodGet, "/groups", query, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provider) GetGroup(ctx context.Context, id string) (group *models.Group, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.GetGroup")
	defer span.End()
	defer func() { p.observe("groups.get", err) }()

	group = &models.Group{}
	if err = p.cachedGet(ctx, "groups", id, "/groups/"+id, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (p *Provider) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (group *models.Group, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.CreateGroup")
	defer span.End()
	defer func() { p.observe("groups.create", err) }()

	group = &models.Group{}
	if err = p.call(ctx, http.MethodPost, "/groups", nil, req, group); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "groups")
	return group, nil
}

func (p *Provider) UpdateGroup(ctx context.Context, id string, req models.UpdateGroupRequest) (group *models.Group, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.UpdateGroup")
	defer span.End()
	defer func() { p.observe("groups.update", err) }()

	group = &models.Group{}
	if err = p.call(ctx, http.MethodPatch, "/groups/"+id, nil, req, group); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "groups")
	return group, nil
}

func (p *Provider) DeleteGroup(ctx context.Context, id string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.DeleteGroup")
	defer span.End()
	defer func() { p.observe("groups.delete", err) }()

	if err = p.call(ctx, http.MethodDelete, "/groups/"+id, nil, nil, nil); err != nil {
		return err
	}
	p.invalidate(ctx, "groups")
	return nil
}

func (p *Provider) ListPeople(ctx context.Context, filter models.PersonFilter) (result *models.List[models.Person], err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.ListPeople")
	defer span.End()
	defer func() { p.observe("people.list", err) }()

	query := url.Values{}
	if filter.Role != "" {
		query.Set("role", filter.Role)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	pageQuery(query, filter.Page)

	result = &models.List[models.Person]{}
	if err = p.call(ctx, http.MethodGet, "/people", query, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provider) GetPerson(ctx context.Context, id string) (person *models.Person, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.GetPerson")
	defer span.End()
	defer func() { p.observe("people.get", err) }()

	person = &models.Person{}
	if err = p.cachedGet(ctx, "people", id, "/people/"+id, person); err != nil {
		return nil, err
	}
	return person, nil
}

func (p *Provider) CurrentPerson(ctx context.Context) (person *models.Person, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.CurrentPerson")
	defer span.End()
	defer func() { p.observe("people.me", err) }()

	person = &models.Person{}
	if err = p.call(ctx, http.MethodGet, "/people/me", nil, nil, person); err != nil {
		return nil, err
	}
	return person, nil
}

func (p *Provider) CreatePerson(ctx context.Context, req models.CreatePersonRequest) (person *models.Person, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.CreatePerson")
	defer span.End()
	defer func() { p.observe("people.create", err) }()

	person = &models.Person{}
	if err = p.call(ctx, http.MethodPost, "/people", nil, req, person); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "people")
	return person, nil
}

func (p *Provider) UpdatePerson(ctx context.Context, id string, req models.UpdatePersonRequest) (person *models.Person, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.UpdatePerson")
	defer span.End()
	defer func() { p.observe("people.update", err) }()

	person = &models.Person{}
	if err = p.call(ctx, http.MethodPatch, "/people/"+id, nil, req, person); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "people")
	return person, nil
}

func (p *Provider) DeletePerson(ctx context.Context, id string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.DeletePerson")
	defer span.End()
	defer func() { p.observe("people.delete", err) }()

	if err = p.call(ctx, http.MethodDelete, "/people/"+id, nil, nil, nil); err != nil {
		return err
	}
	p.invalidate(ctx, "people")
	return nil
}

func (p *Provider) ListThings(ctx context.Context, filter models.ThingFilter) (result *models.List[models.Thing], err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.ListThings")
	defer span.End()
	defer func() { p.observe("things.list", err) }()

	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	pageQuery(query, filter.Page)

	result = &models.List[models.Thing]{}
	if err = p.call(ctx, http.MethodGet, "/things", query, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provider) GetThing(ctx context.Context, id string) (thing *models.Thing, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.GetThing")
	defer span.End()
	defer func() { p.observe("things.get", err) }()

	thing = &models.Thing{}
	if err = p.cachedGet(ctx, "things", id, "/things/"+id, thing); err != nil {
		return nil, err
	}
	return thing, nil
}

func (p *Provider) CreateThing(ctx context.Context, req models.CreateThingRequest) (thing *models.Thing, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.CreateThing")
	defer span.End()
	defer func() { p.observe("things.create", err) }()

	thing = &models.Thing{}
	if err = p.call(ctx, http.MethodPost, "/things", nil, req, thing); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "things")
	return thing, nil
}

func (p *Provider) UpdateThing(ctx context.Context, id string, req models.UpdateThingRequest) (thing *models.Thing, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.UpdateThing")
	defer span.End()
	defer func() { p.observe("things.update", err) }()

	thing = &models.Thing{}
	if err = p.call(ctx, http.MethodPatch, "/things/"+id, nil, req, thing); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "things")
	return thing, nil
}

func (p *Provider) DeleteThing(ctx context.Context, id string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.DeleteThing")
	defer span.End()
	defer func() { p.observe("things.delete", err) }()

	if err = p.call(ctx, http.MethodDelete, "/things/"+id, nil, nil, nil); err != nil {
		return err
	}
	p.invalidate(ctx, "things")
	return nil
}

func (p *Provider) ListConnections(ctx context.Context, filter models.ConnectionFilter) (result *models.List[models.Connection], err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.ListConnections")
	defer span.End()
	defer func() { p.observe("connections.list", err) }()

	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.FromThingID != "" {
		query.Set("from_thing_id", filter.FromThingID)
	}
	if filter.ToThingID != "" {
		query.Set("to_thing_id", filter.ToThingID)
	}
	pageQuery(query, filter.Page)

	result = &models.List[models.Connection]{}
	if err = p.call(ctx, http.MethodGet, "/connections", query, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provider) GetConnection(ctx context.Context, id string) (connection *models.Connection, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.GetConnection")
	defer span.End()
	defer func() { p.observe("connections.get", err) }()

	connection = &models.Connection{}
	if err = p.cachedGet(ctx, "connections", id, "/connections/"+id, connection); err != nil {
		return nil, err
	}
	return connection, nil
}

func (p *Provider) CreateConnection(ctx context.Context, req models.CreateConnectionRequest) (connection *models.Connection, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.CreateConnection")
	defer span.End()
	defer func() { p.observe("connections.create", err) }()

	connection = &models.Connection{}
	if err = p.call(ctx, http.MethodPost, "/connections", nil, req, connection); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "connections")
	return connection, nil
}

func (p *Provider) BatchCreateConnections(ctx context.Context, req models.BatchCreateConnectionsRequest) (connections []models.Connection, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.BatchCreateConnections")
	defer span.End()
	defer func() { p.observe("connections.batch_create", err) }()

	if err = p.call(ctx, http.MethodPost, "/connections/batch", nil, req, &connections); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "connections")
	return connections, nil
}

func (p *Provider) DeleteConnection(ctx context.Context, id string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.DeleteConnection")
	defer span.End()
	defer func() { p.observe("connections.delete", err) }()

	if err = p.call(ctx, http.MethodDelete, "/connections/"+id, nil, nil, nil); err != nil {
		return err
	}
	p.invalidate(ctx, "connections")
	return nil
}

func (p *Provider) ListEvents(ctx context.Context, filter models.EventFilter) (result *models.List[models.Event], err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.ListEvents")
	defer span.End()
	defer func() { p.observe("events.list", err) }()

	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.ActorID != "" {
		query.Set("actor_id", filter.ActorID)
	}
	if filter.TargetID != "" {
		query.Set("target_id", filter.TargetID)
	}
	if filter.StartTime != nil {
		query.Set("start_time", filter.StartTime.Format(time.RFC3339))
	}
	if filter.EndTime != nil {
		query.Set("end_time", filter.EndTime.Format(time.RFC3339))
	}
	pageQuery(query, filter.Page)

	result = &models.List[models.Event]{}
	if err = p.call(ctx, http.MethodGet, "/events", query, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provider) RecordEvent(ctx context.Context, req models.RecordEventRequest) (event *models.Event, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.RecordEvent")
	defer span.End()
	defer func() { p.observe("events.record", err) }()

	event = &models.Event{}
	if err = p.call(ctx, http.MethodPost, "/events", nil, req, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (p *Provider) ListKnowledge(ctx context.Context, filter models.KnowledgeFilter) (result *models.List[models.Knowledge], err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.ListKnowledge")
	defer span.End()
	defer func() { p.observe("knowledge.list", err) }()

	query := url.Values{}
	if filter.SourceThingID != "" {
		query.Set("source_thing_id", filter.SourceThingID)
	}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.Label != "" {
		query.Set("label", filter.Label)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	pageQuery(query, filter.Page)

	result = &models.List[models.Knowledge]{}
	if err = p.call(ctx, http.MethodGet, "/knowledge", query, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provider) GetKnowledge(ctx context.Context, id string) (knowledge *models.Knowledge, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.GetKnowledge")
	defer span.End()
	defer func() { p.observe("knowledge.get", err) }()

	knowledge = &models.Knowledge{}
	if err = p.cachedGet(ctx, "knowledge", id, "/knowledge/"+id, knowledge); err != nil {
		return nil, err
	}
	return knowledge, nil
}

func (p *Provider) CreateKnowledge(ctx context.Context, req models.CreateKnowledgeRequest) (knowledge *models.Knowledge, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.CreateKnowledge")
	defer span.End()
	defer func() { p.observe("knowledge.create", err) }()

	knowledge = &models.Knowledge{}
	if err = p.call(ctx, http.MethodPost, "/knowledge", nil, req, knowledge); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "knowledge")
	return knowledge, nil
}

func (p *Provider) UpdateKnowledge(ctx context.Context, id string, req models.UpdateKnowledgeRequest) (knowledge *models.Knowledge, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.UpdateKnowledge")
	defer span.End()
	defer func() { p.observe("knowledge.update", err) }()

	knowledge = &models.Knowledge{}
	if err = p.call(ctx, http.MethodPatch, "/knowledge/"+id, nil, req, knowledge); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "knowledge")
	return knowledge, nil
}

func (p *Provider) DeleteKnowledge(ctx context.Context, id string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.DeleteKnowledge")
	defer span.End()
	defer func() { p.observe("knowledge.delete", err) }()

	if err = p.call(ctx, http.MethodDelete, "/knowledge/"+id, nil, nil, nil); err != nil {
		return err
	}
	p.invalidate(ctx, "knowledge")
	return nil
}

func (p *Provider) BulkCreateKnowledge(ctx context.Context, req models.BulkCreateKnowledgeRequest) (knowledge []models.Knowledge, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.BulkCreateKnowledge")
	defer span.End()
	defer func() { p.observe("knowledge.bulk_create", err) }()

	if err = p.call(ctx, http.MethodPost, "/knowledge/bulk", nil, req, &knowledge); err != nil {
		return nil, err
	}
	p.invalidate(ctx, "knowledge")
	return knowledge, nil
}

func (p *Provider) SearchKnowledge(ctx context.Context, req models.KnowledgeSearchRequest) (results []models.KnowledgeSearchResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.SearchKnowledge")
	defer span.End()
	defer func() { p.observe("knowledge.search", err) }()

	if err = p.call(ctx, http.MethodPost, "/knowledge/search", nil, req, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Provider) Embed(ctx context.Context, text string) (vector []float32, err error) {
	ctx, span := tracing.StartSpan(ctx, "httpapi.Provider.Embed")
	defer span.End()
	defer func() { p.observe("knowledge.embed", err) }()

	body := map[string]string{"text": text}
	var data struct {
		Embedding []float32 `json:"embedding"`
	}
	if err = p.call(ctx, http.MethodPost, "/knowledge/embed", nil, body, &data); err != nil {
		return nil, err
	}
	return data.Embedding, nil
}
