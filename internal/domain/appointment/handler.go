package appointment

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
	api.POST("/appointments", h.Create, auth.RequireRole(auth.RolePatient))
	api.GET("/appointments/:id", h.Get, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	api.GET("/appointments", h.List, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	api.PUT("/appointments/:id/status", h.UpdateStatus, auth.RequireRole(auth.RoleDoctor))
}

func (h *Handler) Create(c echo.Context) error {
	id, _ := auth.IdentityFromContext(c.Request().Context())

	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if id.Role == auth.RolePatient {
		a.PatientID = id.ActorID
	}
	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	id, _ := auth.IdentityFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	var (
		items []*Appointment
		total int
		err   error
	)
	switch id.Role {
	case auth.RoleDoctor:
		items, total, err = h.svc.ListByDoctor(c.Request().Context(), id.ActorID, pg.Limit, pg.Offset)
	case auth.RolePatient:
		items, total, err = h.svc.ListByPatient(c.Request().Context(), id.ActorID, pg.Limit, pg.Offset)
	default:
		pid, perr := uuid.Parse(c.QueryParam("patient_id"))
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required for admin listing")
		}
		items, total, err = h.svc.ListByPatient(c.Request().Context(), pid, pg.Limit, pg.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		return apperr.ToHTTP(err)
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}
