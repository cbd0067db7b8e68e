package controllers

import (
	"log/slog"
	"net/http"

	"eventpulse/internal/delivery/http/helpers"
	"eventpulse/internal/domain"
)

type GeneratorController struct {
	Logger    *slog.Logger
	Generator domain.EventGenerator
}

func NewGeneratorController(logger *slog.Logger, gen domain.EventGenerator) *GeneratorController {
	return &GeneratorController{
		Logger:    logger,
		Generator: gen,
	}
}

// GenerateEventRequest is the request body for POST /events/generate.
type GenerateEventRequest struct {
	Prompt string `json:"prompt"`
}

// Validate implements Validator.
func (g GenerateEventRequest) Validate() []string {
	var errs []string
	if g.Prompt == "" {
		errs = append(errs, "prompt is required")
	}
	return errs
}

// GenerateEventSuccessResponse is the success response envelope for POST /events/generate (200).
type GenerateEventSuccessResponse struct {
	Data  *domain.GeneratedEvent `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// GenerateEvent godoc
// @Summary Generate an event draft from an idea
// @Description Calls the external text-generation API to turn a free-form idea into a structured event draft. Rate-limit responses are retried a bounded number of times before failing.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GenerateEventRequest true "Event idea"
// @Success 200 {object} controllers.GenerateEventSuccessResponse "data contains the draft"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/generate [post]
func (c *GeneratorController) GenerateEvent(w http.ResponseWriter, r *http.Request) {
	var req GenerateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	draft, err := c.Generator.Generate(r.Context(), req.Prompt)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to generate event")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, draft)
}
