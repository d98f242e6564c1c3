package chat

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
	api.POST("/chat/messages", h.Send, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	api.GET("/chat/messages", h.History, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
}

type sendRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Body      string    `json:"body"`
}

func (h *Handler) Send(c echo.Context) error {
	identity, _ := auth.IdentityFromContext(c.Request().Context())

	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// The sender's side of the pair always comes from the token.
	switch identity.Role {
	case auth.RolePatient:
		req.PatientID = identity.ActorID
	case auth.RoleDoctor:
		req.DoctorID = identity.ActorID
	}
	m, err := h.svc.Send(c.Request().Context(), SendInput{
		PatientID:  req.PatientID,
		DoctorID:   req.DoctorID,
		SenderRole: identity.Role,
		Body:       req.Body,
	})
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) History(c echo.Context) error {
	identity, _ := auth.IdentityFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	var patientID, doctorID uuid.UUID
	var err error
	switch identity.Role {
	case auth.RolePatient:
		patientID = identity.ActorID
		doctorID, err = uuid.Parse(c.QueryParam("doctor_id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "doctor_id is required")
		}
	default:
		doctorID = identity.ActorID
		patientID, err = uuid.Parse(c.QueryParam("patient_id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
		}
	}
	items, total, err := h.svc.History(c.Request().Context(), patientID, doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
