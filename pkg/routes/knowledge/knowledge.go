// Package knowledge exposes the knowledge dimension over HTTP, including text
// and semantic search.
package knowledge

import (
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/provider"
)

// Handler serves knowledge routes.
type Handler struct {
	provider provider.Provider
	logger   ectologger.Logger
}

// NewHandler creates a knowledge handler.
func NewHandler(p provider.Provider, logger ectologger.Logger) *Handler {
	return &Handler{provider: p, logger: logger}
}

// RegisterRoutes registers knowledge routes. /search and /bulk come before
// /:id so echo does not treat them as ids.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListKnowledge)
	g.POST("", h.CreateKnowledge)
	g.POST("/search", h.SearchKnowledge)
	g.POST("/bulk", h.BulkCreateKnowledge)
	g.POST("/embed", h.Embed)
	g.GET("/:id", h.GetKnowledge)
	g.PATCH("/:id", h.UpdateKnowledge)
	g.DELETE("/:id", h.DeleteKnowledge)
}

// ListKnowledge lists knowledge records in the caller's tenant.
func (h *Handler) ListKnowledge(c echo.Context) error {
	var filter models.KnowledgeFilter
	if err := c.Bind(&filter); err != nil {
		return errors.NewValidation("query", "invalid query parameters")
	}

	result, err := h.provider.ListKnowledge(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(result))
}

// GetKnowledge gets a knowledge record by id.
func (h *Handler) GetKnowledge(c echo.Context) error {
	knowledge, err := h.provider.GetKnowledge(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(knowledge))
}

// CreateKnowledge creates a knowledge record.
func (h *Handler) CreateKnowledge(c echo.Context) error {
	var req models.CreateKnowledgeRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	knowledge, err := h.provider.CreateKnowledge(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.OK(knowledge))
}

// UpdateKnowledge patches a knowledge record.
func (h *Handler) UpdateKnowledge(c echo.Context) error {
	var req models.UpdateKnowledgeRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	knowledge, err := h.provider.UpdateKnowledge(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(knowledge))
}

// DeleteKnowledge deletes a knowledge record.
func (h *Handler) DeleteKnowledge(c echo.Context) error {
	if err := h.provider.DeleteKnowledge(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(nil))
}

// BulkCreateKnowledge ingests several knowledge records at once.
func (h *Handler) BulkCreateKnowledge(c echo.Context) error {
	var req models.BulkCreateKnowledgeRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	created, err := h.provider.BulkCreateKnowledge(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.OK(created))
}

// SearchKnowledge runs semantic search with text fallback.
func (h *Handler) SearchKnowledge(c echo.Context) error {
	var req models.KnowledgeSearchRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	results, err := h.provider.SearchKnowledge(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(results))
}

// EmbedRequest is the body for a raw embedding call.
type EmbedRequest struct {
	Text string `json:"text"`
}

// Embed returns the embedding vector for a piece of text.
func (h *Handler) Embed(c echo.Context) error {
	var req EmbedRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	vector, err := h.provider.Embed(c.Request().Context(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(map[string]any{"embedding": vector}))
}
