package audit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/audit", h.List, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var (
		items []*Entry
		total int
		err   error
	)
	if raw := c.QueryParam("entity_id"); raw != "" {
		entityID, perr := uuid.Parse(raw)
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid entity_id")
		}
		items, total, err = h.svc.ListByEntity(c.Request().Context(), entityID, pg.Limit, pg.Offset)
	} else {
		items, total, err = h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
