package connection

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
	"github.com/lib/pq"

	"github.com/Ramsey-B/fern/pkg/database"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var columns = []string{"id", "group_id", "type", "from_thing_id", "to_thing_id", "metadata", "created_at"}

// Repository handles connection persistence. Connections are immutable; the
// only mutation is hard delete. A unique index on (group_id, from_thing_id,
// to_thing_id, type) enforces the no-duplicates rule.
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

// Create inserts a single connection. A duplicate tuple surfaces as CONFLICT.
func (r *Repository) Create(ctx context.Context, groupID string, req models.CreateConnectionRequest) (*models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":   "Create",
		"group_id": groupID,
		"type":     req.Type,
	})

	conn, err := buildConnection(groupID, req)
	if err != nil {
		return nil, err
	}

	sb := database.NewInsertBuilder()
	sb.InsertInto("connections")
	sb.Cols(columns...)
	sb.Values(conn.ID, conn.GroupID, conn.Type, conn.FromThingID, conn.ToThingID, conn.Metadata, conn.CreatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, duplicateConflict(req)
		}
		log.WithError(err).Error("Failed to create connection")
		return nil, apperrors.NewInternal("failed to create connection").WithCause(err)
	}

	log.WithFields(map[string]any{"id": conn.ID}).Info("Created connection")
	return conn, nil
}

// BatchCreate inserts several connections atomically. Any duplicate, whether
// against existing rows or an earlier item in the batch, fails the whole
// batch as CONFLICT and nothing is persisted.
func (r *Repository) BatchCreate(ctx context.Context, groupID string, reqs []models.CreateConnectionRequest) ([]models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.BatchCreate")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":   "BatchCreate",
		"group_id": groupID,
		"count":    len(reqs),
	})

	seen := map[string]bool{}
	for _, req := range reqs {
		key := req.FromThingID + "|" + req.ToThingID + "|" + req.Type
		if seen[key] {
			return nil, duplicateConflict(req)
		}
		seen[key] = true
	}

	txCtx, tx, err := database.GetTx(ctx, r.logger, r.db, nil)
	if err != nil {
		return nil, apperrors.NewInternal("failed to begin transaction").WithCause(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	conns := make([]models.Connection, 0, len(reqs))
	for _, req := range reqs {
		conn, err := buildConnection(groupID, req)
		if err != nil {
			return nil, err
		}

		sb := database.NewInsertBuilder()
		sb.InsertInto("connections")
		sb.Cols(columns...)
		sb.Values(conn.ID, conn.GroupID, conn.Type, conn.FromThingID, conn.ToThingID, conn.Metadata, conn.CreatedAt)

		query, args := sb.Build()
		if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return nil, duplicateConflict(req)
			}
			log.WithError(err).Error("Failed to create connection in batch")
			return nil, apperrors.NewInternal("failed to create connections").WithCause(err)
		}

		conns = append(conns, *conn)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, apperrors.NewInternal("failed to commit connections").WithCause(err)
	}

	log.Info("Created connection batch")
	return conns, nil
}

// Get retrieves a connection by ID within the group. Returns (nil, nil) when
// no row exists in the group.
func (r *Repository) Get(ctx context.Context, groupID, id string) (*models.Connection, error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("connections")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("group_id", groupID),
	)

	query, args := sb.Build()
	var conn models.Connection
	if err := r.db.GetContext(ctx, &conn, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get connection")
		return nil, apperrors.NewInternal("failed to get connection").WithCause(err)
	}

	return &conn, nil
}

// List retrieves connections within the group.
func (r *Repository) List(ctx context.Context, groupID string, filter models.ConnectionFilter) (*models.List[models.Connection], error) {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.List")
	defer span.End()

	filter.Normalize()

	countSb := database.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("connections")
	countSb.Where(listConditions(countSb, groupID, filter)...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count connections")
		return nil, apperrors.NewInternal("failed to count connections").WithCause(err)
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("connections")
	sb.Where(listConditions(sb, groupID, filter)...)
	sb.OrderBy(fmt.Sprintf("created_at %s", filter.Order))
	sb.Limit(filter.Limit).Offset(filter.Offset)

	query, args := sb.Build()
	conns := []models.Connection{}
	if err := r.db.SelectContext(ctx, &conns, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list connections")
		return nil, apperrors.NewInternal("failed to list connections").WithCause(err)
	}

	return &models.List[models.Connection]{
		Items:      conns,
		TotalCount: totalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// Delete removes a connection. Connections are the one dimension that hard
// deletes; they carry no downstream references.
func (r *Repository) Delete(ctx context.Context, groupID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "connection.Repository.Delete")
	defer span.End()

	sb := database.NewDeleteBuilder()
	sb.DeleteFrom("connections")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("group_id", groupID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete connection")
		return apperrors.NewInternal("failed to delete connection").WithCause(err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NewNotFound("connection", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted connection")
	return nil
}

func buildConnection(groupID string, req models.CreateConnectionRequest) (*models.Connection, error) {
	metadata := json.RawMessage("{}")
	if req.Metadata != nil {
		b, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, apperrors.NewValidation("metadata", "metadata must be a JSON object")
		}
		metadata = b
	}

	return &models.Connection{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		Type:        req.Type,
		FromThingID: req.FromThingID,
		ToThingID:   req.ToThingID,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func duplicateConflict(req models.CreateConnectionRequest) error {
	return apperrors.NewConflict(fmt.Sprintf("connection %s from %s to %s already exists", req.Type, req.FromThingID, req.ToThingID))
}

func listConditions(sb *sqlbuilder.SelectBuilder, groupID string, filter models.ConnectionFilter) []string {
	where := []string{sb.Equal("group_id", groupID)}
	if filter.Type != "" {
		where = append(where, sb.Equal("type", filter.Type))
	}
	if filter.FromThingID != "" {
		where = append(where, sb.Equal("from_thing_id", filter.FromThingID))
	}
	if filter.ToThingID != "" {
		where = append(where, sb.Equal("to_thing_id", filter.ToThingID))
	}
	return where
}
