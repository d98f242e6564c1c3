package alert

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
	api.POST("/alerts", h.Raise, auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
	api.POST("/alerts/emergency", h.RaiseEmergency, auth.RequireRole(auth.RolePatient))
	api.GET("/alerts", h.List, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	api.GET("/alerts/:id", h.Get, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	api.POST("/alerts/:id/acknowledge", h.Acknowledge, auth.RequireRole(auth.RoleDoctor))
}

type raiseRequest struct {
	PatientID uuid.UUID  `json:"patient_id"`
	DoctorID  *uuid.UUID `json:"doctor_id"`
	Type      string     `json:"type"`
	Severity  string     `json:"severity"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
}

func (h *Handler) Raise(c echo.Context) error {
	var req raiseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Raise(c.Request().Context(), RaiseInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Type:      req.Type,
		Severity:  req.Severity,
		Title:     req.Title,
		Message:   req.Message,
	})
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

type emergencyRequest struct {
	Message string `json:"message"`
}

// RaiseEmergency lets a patient trigger an emergency alert for
// themselves; the target doctor is resolved from their appointments.
func (h *Handler) RaiseEmergency(c echo.Context) error {
	identity, _ := auth.IdentityFromContext(c.Request().Context())

	var req emergencyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.RaiseEmergency(c.Request().Context(), identity.ActorID, req.Message)
	if err != nil {
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
		items []*Alert
		total int
		err   error
	)
	switch id.Role {
	case auth.RoleDoctor:
		items, total, err = h.svc.ListByDoctor(c.Request().Context(), id.ActorID, pg.Limit, pg.Offset)
	default:
		items, total, err = h.svc.ListByPatient(c.Request().Context(), id.ActorID, pg.Limit, pg.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Acknowledge(c echo.Context) error {
	identity, _ := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Acknowledge(c.Request().Context(), id, identity.ActorID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}
