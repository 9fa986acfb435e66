// Package ontology exposes the closed vocabularies for discovery. Clients use
// these endpoints to populate pickers instead of hardcoding the legal sets.
package ontology

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/ontology"
)

// Handler serves vocabulary listing routes.
type Handler struct{}

// NewHandler creates an ontology handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes registers vocabulary routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListVocabularies)
	g.GET("/thing-types", h.ThingTypes)
	g.GET("/person-types", h.PersonTypes)
	g.GET("/connection-types", h.ConnectionTypes)
	g.GET("/event-types", h.EventTypes)
	g.GET("/group-types", h.GroupTypes)
	g.GET("/roles", h.Roles)
	g.GET("/statuses", h.Statuses)
}

// ListVocabularies returns every vocabulary in one payload.
func (h *Handler) ListVocabularies(c echo.Context) error {
	return c.JSON(http.StatusOK, models.OK(map[string]any{
		"thing_types":      ontology.ThingTypes(),
		"person_types":     ontology.PersonTypes(),
		"connection_types": ontology.ConnectionTypes(),
		"event_types":      ontology.EventTypes(),
		"group_types":      ontology.GroupTypes(),
		"roles":            ontology.Roles(),
		"statuses":         ontology.Statuses(),
		"group_statuses":   ontology.GroupStatuses(),
	}))
}

func (h *Handler) ThingTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, models.OK(ontology.ThingTypes()))
}

func (h *Handler) PersonTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, models.OK(ontology.PersonTypes()))
}

func (h *Handler) ConnectionTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, models.OK(ontology.ConnectionTypes()))
}

func (h *Handler) EventTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, models.OK(ontology.EventTypes()))
}

func (h *Handler) GroupTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, models.OK(ontology.GroupTypes()))
}

func (h *Handler) Roles(c echo.Context) error {
	return c.JSON(http.StatusOK, models.OK(ontology.Roles()))
}

func (h *Handler) Statuses(c echo.Context) error {
	return c.JSON(http.StatusOK, models.OK(map[string]any{
		"statuses":       ontology.Statuses(),
		"group_statuses": ontology.GroupStatuses(),
	}))
}
