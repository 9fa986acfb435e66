package thing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var columns = []string{"id", "group_id", "type", "name", "properties", "status", "created_at", "updated_at"}

// Repository handles thing persistence. Every query is scoped by group_id.
// Things never leave the table: delete archives via status so connections,
// events and knowledge keep valid references.
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

// Create inserts a new thing row.
func (r *Repository) Create(ctx context.Context, groupID string, req models.CreateThingRequest) (*models.Thing, error) {
	ctx, span := tracing.StartSpan(ctx, "thing.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":   "Create",
		"group_id": groupID,
		"type":     req.Type,
		"name":     req.Name,
	})

	properties := json.RawMessage("{}")
	if req.Properties != nil {
		b, err := json.Marshal(req.Properties)
		if err != nil {
			return nil, apperrors.NewValidation("properties", "properties must be a JSON object")
		}
		properties = b
	}

	status := req.Status
	if status == "" {
		status = ontology.StatusActive
	}

	now := time.Now().UTC()
	thing := &models.Thing{
		ID:         uuid.New().String(),
		GroupID:    groupID,
		Type:       req.Type,
		Name:       req.Name,
		Properties: properties,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	sb := database.NewInsertBuilder()
	sb.InsertInto("things")
	sb.Cols(columns...)
	sb.Values(thing.ID, thing.GroupID, thing.Type, thing.Name, thing.Properties, thing.Status, thing.CreatedAt, thing.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create thing")
		return nil, apperrors.NewInternal("failed to create thing").WithCause(err)
	}

	log.WithFields(map[string]any{"id": thing.ID}).Info("Created thing")
	return thing, nil
}

// Get retrieves a thing by ID within the group. Archived things remain
// readable. Returns (nil, nil) when no row exists in the group.
func (r *Repository) Get(ctx context.Context, groupID, id string) (*models.Thing, error) {
	ctx, span := tracing.StartSpan(ctx, "thing.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("things")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("group_id", groupID),
	)

	query, args := sb.Build()
	var thing models.Thing
	if err := r.db.GetContext(ctx, &thing, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get thing")
		return nil, apperrors.NewInternal("failed to get thing").WithCause(err)
	}

	return &thing, nil
}

// List retrieves things within the group. Archived things are excluded unless
// the filter asks for them by status.
func (r *Repository) List(ctx context.Context, groupID string, filter models.ThingFilter) (*models.List[models.Thing], error) {
	ctx, span := tracing.StartSpan(ctx, "thing.Repository.List")
	defer span.End()

	filter.Normalize()

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("things")
	countSb.Where(listConditions(countSb, groupID, filter)...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count things")
		return nil, apperrors.NewInternal("failed to count things").WithCause(err)
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("things")
	sb.Where(listConditions(sb, groupID, filter)...)
	sb.OrderBy(fmt.Sprintf("created_at %s", filter.Order))
	sb.Limit(filter.Limit).Offset(filter.Offset)

	query, args := sb.Build()
	things := []models.Thing{}
	if err := r.db.SelectContext(ctx, &things, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list things")
		return nil, apperrors.NewInternal("failed to list things").WithCause(err)
	}

	return &models.List[models.Thing]{
		Items:      things,
		TotalCount: totalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// ListPeople retrieves person-typed things within the group, optionally
// filtered by the role stored in their properties.
func (r *Repository) ListPeople(ctx context.Context, groupID string, filter models.PersonFilter) (*models.List[models.Thing], error) {
	ctx, span := tracing.StartSpan(ctx, "thing.Repository.ListPeople")
	defer span.End()

	filter.Normalize()

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("things")
	countSb.Where(peopleConditions(countSb, groupID, filter)...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count people")
		return nil, apperrors.NewInternal("failed to count people").WithCause(err)
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("things")
	sb.Where(peopleConditions(sb, groupID, filter)...)
	sb.OrderBy(fmt.Sprintf("created_at %s", filter.Order))
	sb.Limit(filter.Limit).Offset(filter.Offset)

	query, args := sb.Build()
	things := []models.Thing{}
	if err := r.db.SelectContext(ctx, &things, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list people")
		return nil, apperrors.NewInternal("failed to list people").WithCause(err)
	}

	return &models.List[models.Thing]{
		Items:      things,
		TotalCount: totalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// GetByUserID retrieves the person thing whose properties carry the given
// auth user ID. Returns (nil, nil) when no row matches.
func (r *Repository) GetByUserID(ctx context.Context, groupID, userID string) (*models.Thing, error) {
	ctx, span := tracing.StartSpan(ctx, "thing.Repository.GetByUserID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("things")
	sb.Where(
		sb.Equal("group_id", groupID),
		sb.In("type", sqlbuilder.Flatten(ontology.PersonTypes())...),
		sb.Or(
			sb.Equal("id", userID),
			sb.Equal("properties->>'user_id'", userID),
		),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var thing models.Thing
	if err := r.db.GetContext(ctx, &thing, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get person by user id")
		return nil, apperrors.NewInternal("failed to get person").WithCause(err)
	}

	return &thing, nil
}

// GetByEmail retrieves the person thing whose properties carry the given
// email. Archived people do not count; their email may be reused. Returns
// (nil, nil) when no row matches.
func (r *Repository) GetByEmail(ctx context.Context, groupID, email string) (*models.Thing, error) {
	ctx, span := tracing.StartSpan(ctx, "thing.Repository.GetByEmail")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("things")
	sb.Where(
		sb.Equal("group_id", groupID),
		sb.In("type", sqlbuilder.Flatten(ontology.PersonTypes())...),
		sb.NotEqual("status", ontology.StatusArchived),
		sb.Equal("properties->>'email'", email),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var thing models.Thing
	if err := r.db.GetContext(ctx, &thing, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get person by email")
		return nil, apperrors.NewInternal("failed to get person").WithCause(err)
	}

	return &thing, nil
}

// Update persists a fully patched thing record. Callers apply the patch and
// the status machine before calling.
func (r *Repository) Update(ctx context.Context, thing *models.Thing) error {
	ctx, span := tracing.StartSpan(ctx, "thing.Repository.Update")
	defer span.End()

	thing.UpdatedAt = time.Now().UTC()

	sb := database.NewUpdateBuilder()
	sb.Update("things")
	sb.Set(
		sb.Assign("name", thing.Name),
		sb.Assign("properties", thing.Properties),
		sb.Assign("status", thing.Status),
		sb.Assign("updated_at", thing.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", thing.ID),
		sb.Equal("group_id", thing.GroupID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update thing")
		return apperrors.NewInternal("failed to update thing").WithCause(err)
	}

	return nil
}

// Archive marks a thing archived. Archiving twice is a no-op success.
func (r *Repository) Archive(ctx context.Context, groupID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "thing.Repository.Archive")
	defer span.End()

	sb := database.NewUpdateBuilder()
	sb.Update("things")
	sb.Set(
		sb.Assign("status", ontology.StatusArchived),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("group_id", groupID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to archive thing")
		return apperrors.NewInternal("failed to archive thing").WithCause(err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NewNotFound("thing", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Archived thing")
	return nil
}

func listConditions(sb *sqlbuilder.SelectBuilder, groupID string, filter models.ThingFilter) []string {
	where := []string{sb.Equal("group_id", groupID)}
	if filter.Type != "" {
		where = append(where, sb.Equal("type", filter.Type))
	}
	if filter.Status != "" {
		where = append(where, sb.Equal("status", filter.Status))
	} else {
		where = append(where, sb.NotEqual("status", ontology.StatusArchived))
	}
	if filter.Search != "" {
		where = append(where, sb.ILike("name", "%"+filter.Search+"%"))
	}
	return where
}

func peopleConditions(sb *sqlbuilder.SelectBuilder, groupID string, filter models.PersonFilter) []string {
	where := []string{
		sb.Equal("group_id", groupID),
		sb.In("type", sqlbuilder.Flatten(ontology.PersonTypes())...),
		sb.NotEqual("status", ontology.StatusArchived),
	}
	if filter.Role != "" {
		where = append(where, sb.Equal("properties->>'role'", filter.Role))
	}
	if filter.Search != "" {
		where = append(where, sb.Or(
			sb.ILike("name", "%"+filter.Search+"%"),
			sb.ILike("properties->>'email'", "%"+filter.Search+"%"),
		))
	}
	return where
}
