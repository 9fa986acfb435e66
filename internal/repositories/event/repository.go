package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var columns = []string{"id", "group_id", "type", "actor_id", "target_id", "metadata", "timestamp"}

// Repository handles event persistence. The table is append-only: insert and
// list are the only operations, there is no update or delete path at all.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Record appends an event row.
func (r *Repository) Record(ctx context.Context, groupID, actorID string, req models.RecordEventRequest) (*models.Event, error) {
	ctx, span := tracing.StartSpan(ctx, "event.Repository.Record")
	defer span.End()

	metadata := json.RawMessage("{}")
	if req.Metadata != nil {
		b, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, apperrors.NewValidation("metadata", "metadata must be a JSON object")
		}
		metadata = b
	}

	event := &models.Event{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Type:      req.Type,
		ActorID:   actorID,
		TargetID:  req.TargetID,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}

	sb := database.NewInsertBuilder()
	sb.InsertInto("events")
	sb.Cols(columns...)
	sb.Values(event.ID, event.GroupID, event.Type, event.ActorID, event.TargetID, event.Metadata, event.Timestamp)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to record event")
		return nil, apperrors.NewInternal("failed to record event").WithCause(err)
	}

	return event, nil
}

// List retrieves events within the group, newest first by default. Timeline
// ordering only exists within a group.
func (r *Repository) List(ctx context.Context, groupID string, filter models.EventFilter) (*models.List[models.Event], error) {
	ctx, span := tracing.StartSpan(ctx, "event.Repository.List")
	defer span.End()

	filter.Normalize()

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("events")
	countSb.Where(listConditions(countSb, groupID, filter)...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count events")
		return nil, apperrors.NewInternal("failed to count events").WithCause(err)
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("events")
	sb.Where(listConditions(sb, groupID, filter)...)
	sb.OrderBy(fmt.Sprintf("timestamp %s", filter.Order))
	sb.Limit(filter.Limit).Offset(filter.Offset)

	query, args := sb.Build()
	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list events")
		return nil, apperrors.NewInternal("failed to list events").WithCause(err)
	}

	return &models.List[models.Event]{
		Items:      events,
		TotalCount: totalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func listConditions(sb *sqlbuilder.SelectBuilder, groupID string, filter models.EventFilter) []string {
	where := []string{sb.Equal("group_id", groupID)}
	if filter.Type != "" {
		where = append(where, sb.Equal("type", filter.Type))
	}
	if filter.ActorID != "" {
		where = append(where, sb.Equal("actor_id", filter.ActorID))
	}
	if filter.TargetID != "" {
		where = append(where, sb.Equal("target_id", filter.TargetID))
	}
	if filter.StartTime != nil {
		where = append(where, sb.GTE("timestamp", *filter.StartTime))
	}
	if filter.EndTime != nil {
		where = append(where, sb.LTE("timestamp", *filter.EndTime))
	}
	return where
}
