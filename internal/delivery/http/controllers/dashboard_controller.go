package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventpulse/internal/delivery/http/helpers"
	"eventpulse/internal/delivery/http/middleware"
	"eventpulse/internal/domain"
)

type DashboardController struct {
	Logger  *slog.Logger
	Service domain.DashboardService
}

func NewDashboardController(logger *slog.Logger, svc domain.DashboardService) *DashboardController {
	return &DashboardController{
		Logger:  logger,
		Service: svc,
	}
}

// GetEventDashboardSuccessResponse is the success response envelope for GET /events/{eventID}/dashboard (200).
type GetEventDashboardSuccessResponse struct {
	Data  *domain.DashboardSnapshot `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// GetEventDashboard godoc
// @Summary Get the organizer dashboard for an event
// @Description Returns the event and freshly computed statistics. An anonymous caller or a missing event gets a null payload (no dashboard available); an authenticated caller who is not the organizer gets 403.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventDashboardSuccessResponse "data contains the snapshot, or null"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/dashboard [get]
func (c *DashboardController) GetEventDashboard(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	// Anonymous callers are allowed through (OptionalAuth); the service
	// degrades to a nil snapshot for them instead of erroring.
	userID, _ := middleware.UserIDFromContext(r.Context())

	snapshot, err := c.Service.GetEventDashboard(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, snapshot)
}
