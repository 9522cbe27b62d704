package mealplans

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// NotFoundMessage is the exact error text returned when no plan is cached.
const NotFoundMessage = "Meal plan not found"

// Handler handles HTTP requests for meal plans.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// HandleGet handles GET /meal-plan?generate=<bool>
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	generate, ok := parseFlag(r.URL.Query().Get("generate"))
	if !ok {
		writeError(w, http.StatusBadRequest, "generate must be a boolean")
		return
	}

	if !generate {
		plan, err := h.service.GetCached(ctx)
		if errors.Is(err, ErrPlanNotFound) {
			writeError(w, http.StatusNotFound, NotFoundMessage)
			return
		}
		if err != nil {
			h.logger.Error("failed to read cached meal plan", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to read meal plan")
			return
		}
		writeJSON(w, http.StatusOK, plan)
		return
	}

	plan, err := h.service.Generate(ctx)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			h.logger.Error("meal plan generation failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "Failed to generate meal plan")
			return
		}
		h.logger.Error("failed to build meal plan", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to build meal plan")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard {"error": "..."} format.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// parseFlag accepts the usual query-string spellings of a boolean:
// 1/0, true/false, t/f, yes/no, y/n and on/off, in any case.
func parseFlag(raw string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, true
	case "0", "false", "f", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
