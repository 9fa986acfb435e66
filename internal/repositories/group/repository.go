package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ramsey-B/fern/pkg/database"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var columns = []string{"id", "slug", "name", "type", "parent_id", "status", "created_at", "updated_at"}

// Repository handles group persistence. Groups are the tenant containers, so
// scoping is by the caller's own group: a caller sees its own group and the
// groups nested directly under it.
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

// Create inserts a new group row. Slug collisions surface as DUPLICATE.
func (r *Repository) Create(ctx context.Context, slug string, req models.CreateGroupRequest) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method": "Create",
		"slug":   slug,
		"type":   req.Type,
	})

	now := time.Now().UTC()
	group := &models.Group{
		ID:        uuid.New().String(),
		Slug:      slug,
		Name:      req.Name,
		Type:      req.Type,
		ParentID:  req.ParentID,
		Status:    ontology.GroupStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	sb := database.NewInsertBuilder()
	sb.InsertInto("groups")
	sb.Cols(columns...)
	sb.Values(group.ID, group.Slug, group.Name, group.Type, group.ParentID, group.Status, group.CreatedAt, group.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperrors.NewDuplicate("slug", slug)
		}
		log.WithError(err).Error("Failed to create group")
		return nil, apperrors.NewInternal("failed to create group").WithCause(err)
	}

	log.WithFields(map[string]any{"id": group.ID}).Info("Created group")
	return group, nil
}

// Get retrieves a group the caller may see. Returns (nil, nil) when no
// visible row exists.
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("groups")
	sb.Where(
		sb.Equal("id", id),
		sb.Or(
			sb.Equal("id", tenantID),
			sb.Equal("parent_id", tenantID),
		),
	)

	query, args := sb.Build()
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get group")
		return nil, apperrors.NewInternal("failed to get group").WithCause(err)
	}

	return &group, nil
}

// GetBySlug retrieves a group by its globally unique slug with no tenant
// filter. Used during identity resolution only.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.GetBySlug")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("groups")
	sb.Where(sb.Equal("slug", slug))

	query, args := sb.Build()
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get group by slug")
		return nil, apperrors.NewInternal("failed to get group").WithCause(err)
	}

	return &group, nil
}

// List retrieves the caller's group and its direct children.
func (r *Repository) List(ctx context.Context, tenantID string, filter models.GroupFilter) (*models.List[models.Group], error) {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.List")
	defer span.End()

	filter.Normalize()

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("groups")
	countWhere := []string{
		countSb.Or(
			countSb.Equal("id", tenantID),
			countSb.Equal("parent_id", tenantID),
		),
	}
	if filter.ParentID != nil {
		countWhere = append(countWhere, countSb.Equal("parent_id", *filter.ParentID))
	}
	if filter.Type != "" {
		countWhere = append(countWhere, countSb.Equal("type", filter.Type))
	}
	if filter.Status != "" {
		countWhere = append(countWhere, countSb.Equal("status", filter.Status))
	}
	if filter.Search != "" {
		countWhere = append(countWhere, countSb.ILike("name", "%"+filter.Search+"%"))
	}
	countSb.Where(countWhere...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count groups")
		return nil, apperrors.NewInternal("failed to count groups").WithCause(err)
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("groups")
	where := []string{
		sb.Or(
			sb.Equal("id", tenantID),
			sb.Equal("parent_id", tenantID),
		),
	}
	if filter.ParentID != nil {
		where = append(where, sb.Equal("parent_id", *filter.ParentID))
	}
	if filter.Type != "" {
		where = append(where, sb.Equal("type", filter.Type))
	}
	if filter.Status != "" {
		where = append(where, sb.Equal("status", filter.Status))
	}
	if filter.Search != "" {
		where = append(where, sb.ILike("name", "%"+filter.Search+"%"))
	}
	sb.Where(where...)
	sb.OrderBy(fmt.Sprintf("created_at %s", filter.Order))
	sb.Limit(filter.Limit).Offset(filter.Offset)

	query, args := sb.Build()
	groups := []models.Group{}
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list groups")
		return nil, apperrors.NewInternal("failed to list groups").WithCause(err)
	}

	return &models.List[models.Group]{
		Items:      groups,
		TotalCount: totalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// Update patches a group the caller may see.
func (r *Repository) Update(ctx context.Context, tenantID, id string, req models.UpdateGroupRequest) (*models.Group, error) {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.Update")
	defer span.End()

	existing, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Type != nil {
		existing.Type = *req.Type
	}
	if req.Status != nil {
		existing.Status = *req.Status
	}
	existing.UpdatedAt = time.Now().UTC()

	sb := database.NewUpdateBuilder()
	sb.Update("groups")
	sb.Set(
		sb.Assign("name", existing.Name),
		sb.Assign("type", existing.Type),
		sb.Assign("status", existing.Status),
		sb.Assign("updated_at", existing.UpdatedAt),
	)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update group")
		return nil, apperrors.NewInternal("failed to update group").WithCause(err)
	}

	return existing, nil
}

// Archive marks a group archived. Archiving twice is a no-op success.
func (r *Repository) Archive(ctx context.Context, tenantID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "group.Repository.Archive")
	defer span.End()

	sb := database.NewUpdateBuilder()
	sb.Update("groups")
	sb.Set(
		sb.Assign("status", ontology.GroupStatusArchived),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Or(
			sb.Equal("id", tenantID),
			sb.Equal("parent_id", tenantID),
		),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to archive group")
		return apperrors.NewInternal("failed to archive group").WithCause(err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NewNotFound("group", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Archived group")
	return nil
}
