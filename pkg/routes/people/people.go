// Package people exposes the people dimension over HTTP.
package people

import (
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/provider"
)

// Handler serves people routes.
type Handler struct {
	provider provider.Provider
	logger   ectologger.Logger
}

// NewHandler creates a people handler.
func NewHandler(p provider.Provider, logger ectologger.Logger) *Handler {
	return &Handler{provider: p, logger: logger}
}

// RegisterRoutes registers people routes. The /me route must be registered
// before /:id so echo does not treat "me" as an id.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListPeople)
	g.POST("", h.CreatePerson)
	g.GET("/me", h.CurrentPerson)
	g.GET("/:id", h.GetPerson)
	g.PATCH("/:id", h.UpdatePerson)
	g.PATCH("/:id/role", h.UpdateRole)
	g.DELETE("/:id", h.DeletePerson)
}

// ListPeople lists people in the caller's tenant.
func (h *Handler) ListPeople(c echo.Context) error {
	var filter models.PersonFilter
	if err := c.Bind(&filter); err != nil {
		return errors.NewValidation("query", "invalid query parameters")
	}

	result, err := h.provider.ListPeople(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(result))
}

// GetPerson gets a person by id.
func (h *Handler) GetPerson(c echo.Context) error {
	person, err := h.provider.GetPerson(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(person))
}

// CurrentPerson resolves the authenticated caller's person record.
func (h *Handler) CurrentPerson(c echo.Context) error {
	person, err := h.provider.CurrentPerson(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(person))
}

// CreatePerson creates a person.
func (h *Handler) CreatePerson(c echo.Context) error {
	var req models.CreatePersonRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	person, err := h.provider.CreatePerson(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, models.OK(person))
}

// UpdatePerson patches a person.
func (h *Handler) UpdatePerson(c echo.Context) error {
	var req models.UpdatePersonRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}

	person, err := h.provider.UpdatePerson(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(person))
}

// UpdateRoleRequest is the body for a role change.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole changes a person's role. Restricted to org owners.
func (h *Handler) UpdateRole(c echo.Context) error {
	var req UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return errors.NewValidation("body", "invalid request body")
	}
	if req.Role == "" {
		return errors.NewValidation("role", "role is required")
	}

	person, err := h.provider.UpdatePerson(c.Request().Context(), c.Param("id"), models.UpdatePersonRequest{
		Role: &req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(person))
}

// DeletePerson archives a person.
func (h *Handler) DeletePerson(c echo.Context) error {
	if err := h.provider.DeletePerson(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.OK(nil))
}
