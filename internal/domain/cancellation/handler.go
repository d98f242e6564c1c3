package cancellation

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/apperr"
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
	api.POST("/cancellations", h.Request, auth.RequireRole(auth.RolePatient))
	api.GET("/cancellations", h.ListPending, auth.RequireRole(auth.RoleAdmin))
	api.GET("/cancellations/:id", h.Get, auth.RequireRole(auth.RolePatient, auth.RoleAdmin))
	api.POST("/cancellations/:id/review", h.Review, auth.RequireRole(auth.RoleAdmin))
}

type requestRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Reason        string    `json:"reason"`
}

func (h *Handler) Request(c echo.Context) error {
	identity, _ := auth.IdentityFromContext(c.Request().Context())

	var req requestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.Request(c.Request().Context(), RequestInput{
		AppointmentID: req.AppointmentID,
		RequestedBy:   identity.ActorID,
		Reason:        req.Reason,
	})
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, out)
}

type reviewRequest struct {
	Decision string  `json:"decision"`
	Note     *string `json:"note"`
}

func (h *Handler) Review(c echo.Context) error {
	identity, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.Review(c.Request().Context(), ReviewInput{
		RequestID:  id,
		ReviewerID: identity.ActorID,
		Decision:   req.Decision,
		Note:       req.Note,
	})
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	out, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ListPending(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPending(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
