// Package composite chains providers into a fallback sequence. Reads try each
// provider in priority order and fall through on backend failures; domain
// errors (not found, validation, auth) surface immediately from whichever
// provider produced them. Writes go to the primary only, never to fallbacks.
package composite

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/provider"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Provider chains an ordered list of backends. The first is the primary.
type Provider struct {
	providers []provider.Provider
	logger    ectologger.Logger
}

// New creates the composite provider. At least one backend is required.
func New(providers []provider.Provider, logger ectologger.Logger) (*Provider, error) {
	if len(providers) == 0 {
		return nil, errors.NewConfiguration("composite provider requires at least one backend")
	}
	return &Provider{providers: providers, logger: logger}, nil
}

func (p *Provider) Name() string {
	return "composite"
}

// Healthy succeeds when any backend is healthy.
func (p *Provider) Healthy(ctx context.Context) error {
	failures := map[string]any{}
	for _, backend := range p.providers {
		if err := backend.Healthy(ctx); err != nil {
			failures[backend.Name()] = err.Error()
			continue
		}
		return nil
	}
	aggregated := errors.NewProvider("no healthy backend")
	for name, message := range failures {
		aggregated = aggregated.WithMeta(name, message)
	}
	return aggregated
}

func (p *Provider) primary() provider.Provider {
	return p.providers[0]
}

// fallthroughError reports whether a failure should move the read to the next
// backend. Domain errors carry an answer and stop the chain.
func fallthroughError(err error) bool {
	code := errors.CodeOf(err)
	return code == errors.CodeProvider || code == errors.CodeInternal || code == errors.CodeNotImplemented
}

// read runs fn against each backend in order until one answers.
func (p *Provider) read(ctx context.Context, operation string, fn func(provider.Provider) error) error {
	failures := map[string]any{}
	for _, backend := range p.providers {
		err := fn(backend)
		if err == nil {
			return nil
		}
		if !fallthroughError(err) {
			return err
		}
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"provider":  backend.Name(),
			"operation": operation,
		}).Warn("Backend read failed, trying next")
		failures[backend.Name()] = err.Error()
	}

	aggregated := errors.NewProvider("all backends failed")
	for name, message := range failures {
		aggregated = aggregated.WithMeta(name, message)
	}
	return aggregated
}

func (p *Provider) ListGroups(ctx context.Context, filter models.GroupFilter) (*models.List[models.Group], error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.ListGroups")
	defer span.End()

	var result *models.List[models.Group]
	err := p.read(ctx, "groups.list", func(backend provider.Provider) error {
		var err error
		result, err = backend.ListGroups(ctx, filter)
		return err
	})
	return result, err
}

func (p *Provider) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.GetGroup")
	defer span.End()

	var result *models.Group
	err := p.read(ctx, "groups.get", func(backend provider.Provider) error {
		var err error
		result, err = backend.GetGroup(ctx, id)
		return err
	})
	return result, err
}

func (p *Provider) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (*models.Group, error) {
	return p.primary().CreateGroup(ctx, req)
}

func (p *Provider) UpdateGroup(ctx context.Context, id string, req models.UpdateGroupRequest) (*models.Group, error) {
	return p.primary().UpdateGroup(ctx, id, req)
}

func (p *Provider) DeleteGroup(ctx context.Context, id string) error {
	return p.primary().DeleteGroup(ctx, id)
}

func (p *Provider) ListPeople(ctx context.Context, filter models.PersonFilter) (*models.List[models.Person], error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.ListPeople")
	defer span.End()

	var result *models.List[models.Person]
	err := p.read(ctx, "people.list", func(backend provider.Provider) error {
		var err error
		result, err = backend.ListPeople(ctx, filter)
		return err
	})
	return result, err
}

func (p *Provider) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.GetPerson")
	defer span.End()

	var result *models.Person
	err := p.read(ctx, "people.get", func(backend provider.Provider) error {
		var err error
		result, err = backend.GetPerson(ctx, id)
		return err
	})
	return result, err
}

func (p *Provider) CurrentPerson(ctx context.Context) (*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.CurrentPerson")
	defer span.End()

	var result *models.Person
	err := p.read(ctx, "people.me", func(backend provider.Provider) error {
		var err error
		result, err = backend.CurrentPerson(ctx)
		return err
	})
	return result, err
}

func (p *Provider) CreatePerson(ctx context.Context, req models.CreatePersonRequest) (*models.Person, error) {
	return p.primary().CreatePerson(ctx, req)
}

func (p *Provider) UpdatePerson(ctx context.Context, id string, req models.UpdatePersonRequest) (*models.Person, error) {
	return p.primary().UpdatePerson(ctx, id, req)
}

func (p *Provider) DeletePerson(ctx context.Context, id string) error {
	return p.primary().DeletePerson(ctx, id)
}

func (p *Provider) ListThings(ctx context.Context, filter models.ThingFilter) (*models.List[models.Thing], error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.ListThings")
	defer span.End()

	var result *models.List[models.Thing]
	err := p.read(ctx, "things.list", func(backend provider.Provider) error {
		var err error
		result, err = backend.ListThings(ctx, filter)
		return err
	})
	return result, err
}

func (p *Provider) GetThing(ctx context.Context, id string) (*models.Thing, error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.GetThing")
	defer span.End()

	var result *models.Thing
	err := p.read(ctx, "things.get", func(backend provider.Provider) error {
		var err error
		result, err = backend.GetThing(ctx, id)
		return err
	})
	return result, err
}

func (p *Provider) CreateThing(ctx context.Context, req models.CreateThingRequest) (*models.Thing, error) {
	return p.primary().CreateThing(ctx, req)
}

func (p *Provider) UpdateThing(ctx context.Context, id string, req models.UpdateThingRequest) (*models.Thing, error) {
	return p.primary().UpdateThing(ctx, id, req)
}

func (p *Provider) DeleteThing(ctx context.Context, id string) error {
	return p.primary().DeleteThing(ctx, id)
}

func (p *Provider) ListConnections(ctx context.Context, filter models.ConnectionFilter) (*models.List[models.Connection], error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.ListConnections")
	defer span.End()

	var result *models.List[models.Connection]
	err := p.read(ctx, "connections.list", func(backend provider.Provider) error {
		var err error
		result, err = backend.ListConnections(ctx, filter)
		return err
	})
	return result, err
}

func (p *Provider) GetConnection(ctx context.Context, id string) (*models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.GetConnection")
	defer span.End()

	var result *models.Connection
	err := p.read(ctx, "connections.get", func(backend provider.Provider) error {
		var err error
		result, err = backend.GetConnection(ctx, id)
		return err
	})
	return result, err
}

func (p *Provider) CreateConnection(ctx context.Context, req models.CreateConnectionRequest) (*models.Connection, error) {
	return p.primary().CreateConnection(ctx, req)
}

func (p *Provider) BatchCreateConnections(ctx context.Context, req models.BatchCreateConnectionsRequest) ([]models.Connection, error) {
	return p.primary().BatchCreateConnections(ctx, req)
}

func (p *Provider) DeleteConnection(ctx context.Context, id string) error {
	return p.primary().DeleteConnection(ctx, id)
}

func (p *Provider) ListEvents(ctx context.Context, filter models.EventFilter) (*models.List[models.Event], error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.ListEvents")
	defer span.End()

	var result *models.List[models.Event]
	err := p.read(ctx, "events.list", func(backend provider.Provider) error {
		var err error
		result, err = backend.ListEvents(ctx, filter)
		return err
	})
	return result, err
}

func (p *Provider) RecordEvent(ctx context.Context, req models.RecordEventRequest) (*models.Event, error) {
	return p.primary().RecordEvent(ctx, req)
}

func (p *Provider) ListKnowledge(ctx context.Context, filter models.KnowledgeFilter) (*models.List[models.Knowledge], error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.ListKnowledge")
	defer span.End()

	var result *models.List[models.Knowledge]
	err := p.read(ctx, "knowledge.list", func(backend provider.Provider) error {
		var err error
		result, err = backend.ListKnowledge(ctx, filter)
		return err
	})
	return result, err
}

func (p *Provider) GetKnowledge(ctx context.Context, id string) (*models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.GetKnowledge")
	defer span.End()

	var result *models.Knowledge
	err := p.read(ctx, "knowledge.get", func(backend provider.Provider) error {
		var err error
		result, err = backend.GetKnowledge(ctx, id)
		return err
	})
	return result, err
}

func (p *Provider) CreateKnowledge(ctx context.Context, req models.CreateKnowledgeRequest) (*models.Knowledge, error) {
	return p.primary().CreateKnowledge(ctx, req)
}

func (p *Provider) UpdateKnowledge(ctx context.Context, id string, req models.UpdateKnowledgeRequest) (*models.Knowledge, error) {
	return p.primary().UpdateKnowledge(ctx, id, req)
}

func (p *Provider) DeleteKnowledge(ctx context.Context, id string) error {
	return p.primary().DeleteKnowledge(ctx, id)
}

func (p *Provider) BulkCreateKnowledge(ctx context.Context, req models.BulkCreateKnowledgeRequest) ([]models.Knowledge, error) {
	return p.primary().BulkCreateKnowledge(ctx, req)
}

func (p *Provider) SearchKnowledge(ctx context.Context, req models.KnowledgeSearchRequest) ([]models.KnowledgeSearchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.SearchKnowledge")
	defer span.End()

	var results []models.KnowledgeSearchResult
	err := p.read(ctx, "knowledge.search", func(backend provider.Provider) error {
		var err error
		results, err = backend.SearchKnowledge(ctx, req)
		return err
	})
	return results, err
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := tracing.StartSpan(ctx, "composite.Provider.Embed")
	defer span.End()

	var vector []float32
	err := p.read(ctx, "knowledge.embed", func(backend provider.Provider) error {
		var err error
		vector, err = backend.Embed(ctx, text)
		return err
	})
	return vector, err
}
