package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/Ramsey-B/fern/pkg/database"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var columns = []string{"id", "group_id", "source_thing_id", "content", "embedding", "type", "labels", "created_at", "updated_at"}

// Repository handles knowledge persistence. Embeddings are stored alongside
// the content as jsonb float arrays; similarity scoring happens in the
// service layer.
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

// Create inserts a knowledge row.
func (r *Repository) Create(ctx context.Context, groupID string, req models.CreateKnowledgeRequest) (*models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "knowledge.Repository.Create")
	defer span.End()

	record := buildKnowledge(groupID, req)

	sb := database.NewInsertBuilder()
	sb.InsertInto("knowledge")
	sb.Cols(columns...)
	sb.Values(record.ID, record.GroupID, record.SourceThingID, record.Content, record.Embedding, record.Type, record.Labels, record.CreatedAt, record.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create knowledge")
		return nil, apperrors.NewInternal("failed to create knowledge").WithCause(err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": record.ID}).Info("Created knowledge")
	return record, nil
}

// BulkCreate inserts several knowledge rows atomically.
func (r *Repository) BulkCreate(ctx context.Context, groupID string, reqs []models.CreateKnowledgeRequest) ([]models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "knowledge.Repository.BulkCreate")
	defer span.End()

	txCtx, tx, err := database.GetTx(ctx, r.logger, r.db, nil)
	if err != nil {
		return nil, apperrors.NewInternal("failed to begin transaction").WithCause(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	records := make([]models.Knowledge, 0, len(reqs))
	for _, req := range reqs {
		record := buildKnowledge(groupID, req)

		sb := database.NewInsertBuilder()
		sb.InsertInto("knowledge")
		sb.Cols(columns...)
		sb.Values(record.ID, record.GroupID, record.SourceThingID, record.Content, record.Embedding, record.Type, record.Labels, record.CreatedAt, record.UpdatedAt)

		query, args := sb.Build()
		if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to create knowledge in bulk")
			return nil, apperrors.NewInternal("failed to create knowledge").WithCause(err)
		}

		records = append(records, *record)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, apperrors.NewInternal("failed to commit knowledge").WithCause(err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(records)}).Info("Created knowledge batch")
	return records, nil
}

// Get retrieves a knowledge record by ID within the group. Returns (nil, nil)
// when no row exists in the group.
func (r *Repository) Get(ctx context.Context, groupID, id string) (*models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "knowledge.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("knowledge")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("group_id", groupID),
	)

	query, args := sb.Build()
	var record models.Knowledge
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get knowledge")
		return nil, apperrors.NewInternal("failed to get knowledge").WithCause(err)
	}

	return &record, nil
}

// List retrieves knowledge records within the group.
func (r *Repository) List(ctx context.Context, groupID string, filter models.KnowledgeFilter) (*models.List[models.Knowledge], error) {
	ctx, span := tracing.StartSpan(ctx, "knowledge.Repository.List")
	defer span.End()

	filter.Normalize()

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("knowledge")
	countSb.Where(listConditions(countSb, groupID, filter)...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count knowledge")
		return nil, apperrors.NewInternal("failed to count knowledge").WithCause(err)
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("knowledge")
	sb.Where(listConditions(sb, groupID, filter)...)
	sb.OrderBy(fmt.Sprintf("created_at %s", filter.Order))
	sb.Limit(filter.Limit).Offset(filter.Offset)

	query, args := sb.Build()
	records := []models.Knowledge{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list knowledge")
		return nil, apperrors.NewInternal("failed to list knowledge").WithCause(err)
	}

	return &models.List[models.Knowledge]{
		Items:      records,
		TotalCount: totalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// SearchText retrieves records whose content matches the query, case
// insensitive.
func (r *Repository) SearchText(ctx context.Context, groupID, query string, limit int) ([]models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "knowledge.Repository.SearchText")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("knowledge")
	sb.Where(
		sb.Equal("group_id", groupID),
		sb.ILike("content", "%"+query+"%"),
	)
	sb.OrderBy("created_at DESC")
	sb.Limit(limit)

	q, args := sb.Build()
	records := []models.Knowledge{}
	if err := r.db.SelectContext(ctx, &records, q, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to search knowledge")
		return nil, apperrors.NewInternal("failed to search knowledge").WithCause(err)
	}

	return records, nil
}

// ListEmbedded retrieves every record in the group that carries an embedding.
// The service layer scores them against the query vector.
func (r *Repository) ListEmbedded(ctx context.Context, groupID string) ([]models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "knowledge.Repository.ListEmbedded")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("knowledge")
	sb.Where(
		sb.Equal("group_id", groupID),
		sb.IsNotNull("embedding"),
	)

	query, args := sb.Build()
	records := []models.Knowledge{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list embedded knowledge")
		return nil, apperrors.NewInternal("failed to list knowledge").WithCause(err)
	}

	return records, nil
}

// Update persists a fully patched knowledge record.
func (r *Repository) Update(ctx context.Context, record *models.Knowledge) error {
	ctx, span := tracing.StartSpan(ctx, "knowledge.Repository.Update")
	defer span.End()

	record.UpdatedAt = time.Now().UTC()

	sb := database.NewUpdateBuilder()
	sb.Update("knowledge")
	sb.Set(
		sb.Assign("content", record.Content),
		sb.Assign("embedding", record.Embedding),
		sb.Assign("type", record.Type),
		sb.Assign("labels", record.Labels),
		sb.Assign("updated_at", record.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", record.ID),
		sb.Equal("group_id", record.GroupID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update knowledge")
		return apperrors.NewInternal("failed to update knowledge").WithCause(err)
	}

	return nil
}

// Delete removes a knowledge record.
func (r *Repository) Delete(ctx context.Context, groupID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "knowledge.Repository.Delete")
	defer span.End()

	sb := database.NewDeleteBuilder()
	sb.DeleteFrom("knowledge")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("group_id", groupID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete knowledge")
		return apperrors.NewInternal("failed to delete knowledge").WithCause(err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NewNotFound("knowledge", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted knowledge")
	return nil
}

func buildKnowledge(groupID string, req models.CreateKnowledgeRequest) *models.Knowledge {
	now := time.Now().UTC()

	knowledgeType := req.Type
	if knowledgeType == "" {
		knowledgeType = "note"
	}

	return &models.Knowledge{
		ID:            uuid.New().String(),
		GroupID:       groupID,
		SourceThingID: req.SourceThingID,
		Content:       req.Content,
		Embedding:     database.NewJSONB(req.Embedding),
		Type:          knowledgeType,
		Labels:        pq.StringArray(req.Labels),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func listConditions(sb *sqlbuilder.SelectBuilder, groupID string, filter models.KnowledgeFilter) []string {
	where := []string{sb.Equal("group_id", groupID)}
	if filter.SourceThingID != "" {
		where = append(where, sb.Equal("source_thing_id", filter.SourceThingID))
	}
	if filter.Type != "" {
		where = append(where, sb.Equal("type", filter.Type))
	}
	if filter.Label != "" {
		where = append(where, fmt.Sprintf("%s = ANY(labels)", sb.Var(filter.Label)))
	}
	if filter.Search != "" {
		where = append(where, sb.ILike("content", "%"+filter.Search+"%"))
	}
	return where
}
