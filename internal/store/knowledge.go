package store

import (
	"context"
	"math"
	"sort"

	"github.com/lib/pq"

	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/validation"
)

// ListKnowledge returns knowledge records in the caller's group.
func (s *Store) ListKnowledge(ctx context.Context, filter models.KnowledgeFilter) (*models.List[models.Knowledge], error) {
	ctx, span := tracing.StartSpan(ctx, "store.ListKnowledge")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	return s.knowledge.List(ctx, tenantID, filter)
}

// GetKnowledge returns a knowledge record in the caller's group.
func (s *Store) GetKnowledge(ctx context.Context, id string) (*models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "store.GetKnowledge")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.knowledge.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NewNotFound("knowledge", id)
	}
	return record, nil
}

// CreateKnowledge creates a knowledge record tied to a source thing. When an
// embedder is configured and the request carries no vector, the content is
// embedded inline; an embedding failure does not block the write.
func (s *Store) CreateKnowledge(ctx context.Context, req models.CreateKnowledgeRequest) (*models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "store.CreateKnowledge")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgUser, "create", "knowledge"); err != nil {
		return nil, err
	}
	if err := validation.ValidateCreateKnowledge(req); err != nil {
		return nil, err
	}

	source, err := s.things.Get(ctx, tenantID, req.SourceThingID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, apperrors.NewNotFound("thing", req.SourceThingID)
	}

	if len(req.Embedding) == 0 && s.embedder != nil {
		vector, err := s.embedder.Embed(ctx, req.Content)
		if err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to embed knowledge content")
		} else {
			req.Embedding = vector
		}
	}

	record, err := s.knowledge.Create(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, tenantID, actorID, ontology.EventTypeKnowledgeCreated, record.ID, map[string]any{
		"source_thing_id": record.SourceThingID,
		"type":            record.Type,
	})
	return record, nil
}

// BulkCreateKnowledge ingests several records atomically. Every source thing
// is checked before anything persists.
func (s *Store) BulkCreateKnowledge(ctx context.Context, req models.BulkCreateKnowledgeRequest) ([]models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "store.BulkCreateKnowledge")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgUser, "create", "knowledge"); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apperrors.NewValidation("items", "bulk request must contain at least one item")
	}

	for _, item := range req.Items {
		if err := validation.ValidateCreateKnowledge(item); err != nil {
			return nil, err
		}
		source, err := s.things.Get(ctx, tenantID, item.SourceThingID)
		if err != nil {
			return nil, err
		}
		if source == nil {
			return nil, apperrors.NewNotFound("thing", item.SourceThingID)
		}
	}

	records, err := s.knowledge.BulkCreate(ctx, tenantID, req.Items)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		s.audit(ctx, tenantID, actorID, ontology.EventTypeKnowledgeCreated, record.ID, map[string]any{
			"source_thing_id": record.SourceThingID,
			"type":            record.Type,
		})
	}
	return records, nil
}

// UpdateKnowledge patches a knowledge record. A content change drops a stale
// embedding unless the request carries a fresh one.
func (s *Store) UpdateKnowledge(ctx context.Context, id string, req models.UpdateKnowledgeRequest) (*models.Knowledge, error) {
	ctx, span := tracing.StartSpan(ctx, "store.UpdateKnowledge")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgUser, "update", "knowledge"); err != nil {
		return nil, err
	}

	current, err := s.knowledge.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NewNotFound("knowledge", id)
	}

	if err := validation.ValidateUpdateKnowledge(req); err != nil {
		return nil, err
	}

	if req.Content != nil && *req.Content != current.Content {
		current.Content = *req.Content
		current.Embedding.Data = nil
	}
	if len(req.Embedding) > 0 {
		current.Embedding.Data = req.Embedding
	}
	if req.Type != nil {
		current.Type = *req.Type
	}
	if req.Labels != nil {
		current.Labels = pq.StringArray(req.Labels)
	}

	if len(current.Embedding.Data) == 0 && s.embedder != nil {
		vector, err := s.embedder.Embed(ctx, current.Content)
		if err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to embed knowledge content")
		} else {
			current.Embedding.Data = vector
		}
	}

	if err := s.knowledge.Update(ctx, current); err != nil {
		return nil, err
	}

	s.audit(ctx, tenantID, actorID, ontology.EventTypeKnowledgeUpdated, current.ID, nil)
	return current, nil
}

// DeleteKnowledge removes a knowledge record.
func (s *Store) DeleteKnowledge(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "store.DeleteKnowledge")
	defer span.End()

	tenantID, actorID, err := s.identity(ctx)
	if err != nil {
		return err
	}
	if err := s.requireRole(ctx, tenantID, actorID, ontology.RoleOrgUser, "delete", "knowledge"); err != nil {
		return err
	}

	if err := s.knowledge.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.audit(ctx, tenantID, actorID, ontology.EventTypeKnowledgeDeleted, id, nil)
	return nil
}

// SearchKnowledge searches the caller's knowledge. With an embedder the
// query is embedded and records are ranked by cosine similarity; otherwise
// the search falls back to case-insensitive text matching with score 1.
func (s *Store) SearchKnowledge(ctx context.Context, req models.KnowledgeSearchRequest) ([]models.KnowledgeSearchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "store.SearchKnowledge")
	defer span.End()

	tenantID, _, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}
	if req.Query == "" {
		return nil, apperrors.NewValidation("query", "query is required")
	}

	limit := req.Limit
	if limit <= 0 || limit > models.MaxLimit {
		limit = models.DefaultLimit
	}

	if s.embedder != nil {
		results, err := s.semanticSearch(ctx, tenantID, req, limit)
		if err == nil {
			return results, nil
		}
		s.logger.WithContext(ctx).WithError(err).Warn("Semantic search failed, falling back to text search")
	}

	records, err := s.knowledge.SearchText(ctx, tenantID, req.Query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]models.KnowledgeSearchResult, 0, len(records))
	for _, record := range records {
		results = append(results, models.KnowledgeSearchResult{Knowledge: record, Score: 1})
	}
	return results, nil
}

// Embed returns the embedding vector for a piece of text.
func (s *Store) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := tracing.StartSpan(ctx, "store.Embed")
	defer span.End()

	if _, _, err := s.identity(ctx); err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, apperrors.NewNotImplemented("embed")
	}
	if text == "" {
		return nil, apperrors.NewValidation("text", "text is required")
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, apperrors.NewProvider("embedding request failed").WithCause(err)
	}
	return vector, nil
}

func (s *Store) semanticSearch(ctx context.Context, tenantID string, req models.KnowledgeSearchRequest, limit int) ([]models.KnowledgeSearchResult, error) {
	queryVector, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	records, err := s.knowledge.ListEmbedded(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	results := make([]models.KnowledgeSearchResult, 0, len(records))
	for _, record := range records {
		if len(record.Embedding.Data) == 0 {
			continue
		}
		score := cosineSimilarity(queryVector, record.Embedding.Data)
		if req.Threshold > 0 && score < req.Threshold {
			continue
		}
		results = append(results, models.KnowledgeSearchResult{Knowledge: record, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
