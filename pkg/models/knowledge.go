package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/Ramsey-B/fern/pkg/database"
)

// Knowledge links free text, and optionally an embedding vector, to a source
// thing. A knowledge record exists independently of any search infrastructure;
// search is layered on top.
type Knowledge struct {
	ID            string                    `json:"id" db:"id"`
	GroupID       string                    `json:"group_id" db:"group_id"`
	SourceThingID string                    `json:"source_thing_id" db:"source_thing_id"`
	Content       string                    `json:"content" db:"content"`
	Embedding     database.JSONB[[]float32] `json:"embedding,omitempty" db:"embedding"`
	Type          string                    `json:"type" db:"type"`
	Labels        pq.StringArray            `json:"labels" db:"labels"`
	CreatedAt     time.Time                 `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at" db:"updated_at"`
}

// CreateKnowledgeRequest is the payload for creating a knowledge record.
type CreateKnowledgeRequest struct {
	GroupID       string    `json:"group_id,omitempty"`
	SourceThingID string    `json:"source_thing_id"`
	Content       string    `json:"content"`
	Embedding     []float32 `json:"embedding,omitempty"`
	Type          string    `json:"type,omitempty"`
	Labels        []string  `json:"labels,omitempty"`
}

// UpdateKnowledgeRequest is the patch payload for a knowledge record.
type UpdateKnowledgeRequest struct {
	Content   *string   `json:"content,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	Type      *string   `json:"type,omitempty"`
	Labels    []string  `json:"labels,omitempty"`
}

// BulkCreateKnowledgeRequest ingests several knowledge records at once.
type BulkCreateKnowledgeRequest struct {
	Items []CreateKnowledgeRequest `json:"items"`
}

// KnowledgeSearchRequest is the payload for text/semantic search.
type KnowledgeSearchRequest struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

// KnowledgeSearchResult pairs a record with its match score. Score is 1 for
// plain text matches and cosine similarity when embeddings are available.
type KnowledgeSearchResult struct {
	Knowledge
	Score float64 `json:"score"`
}

// KnowledgeFilter scopes knowledge reads.
type KnowledgeFilter struct {
	GroupID       string `query:"group_id"`
	SourceThingID string `query:"source_thing_id"`
	Type          string `query:"type"`
	Label         string `query:"label"`
	Search        string `query:"search"`
	Page
}
