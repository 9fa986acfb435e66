package store

import (
	"context"
	"encoding/json"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/validation"
)

// ListEvents returns events in the caller's group, newest first by default.
func (s *Store) ListEvents(ctx context.Context, filter models.EventFilter) (*models.List[models.Event], error) {
	ctx, span := tracing.StartSpan(ctx, "store.ListEvents")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	return s.events.List(ctx, tenantID, filter)
}

// RecordEvent appends a caller-supplied event. The pipeline's own audit
// events go through the same table; this is the door for application events
// like lesson_completed or payment_completed.
func (s *Store) RecordEvent(ctx context.Context, req models.RecordEventRequest) (*models.Event, error) {
	ctx, span := tracing.StartSpan(ctx, "store.RecordEvent")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateRecordEvent(req); err != nil {
		return nil, err
	}

	if req.ActorID != "" {
		actorID = req.ActorID
	}

	event, err := s.events.Record(ctx, tenantID, actorID, req)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		var meta json.RawMessage
		if req.Metadata != nil {
			meta, _ = json.Marshal(req.Metadata)
		}
		change := &kafka.ChangeEvent{
			EventType: event.Type,
			GroupID:   event.GroupID,
			ActorID:   event.ActorID,
			Metadata:  meta,
			Timestamp: event.Timestamp,
		}
		if event.TargetID != nil {
			change.TargetID = *event.TargetID
		}
		if err := s.publisher.PublishChangeEvent(ctx, change); err != nil {
			s.logger.WithContext(ctx).WithError(err).Error("Failed to publish change event")
		}
	}

	return event, nil
}
