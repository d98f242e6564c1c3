package vitals

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/vitals/batch", h.IngestBatch, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
}

type batchRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	Readings  []Reading `json:"readings"`
}

func (h *Handler) IngestBatch(c echo.Context) error {
	identity, _ := auth.IdentityFromContext(c.Request().Context())

	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// A patient device can only submit its own readings.
	if identity.Role == auth.RolePatient {
		req.PatientID = identity.ActorID
	}
	res, err := h.svc.IngestBatch(c.Request().Context(), req.PatientID, req.Readings)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	status := http.StatusOK
	if res.Failed > 0 {
		status = http.StatusMultiStatus
	}
	return c.JSON(status, res)
}
