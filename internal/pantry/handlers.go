package pantry

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const maxCreateBodyBytes = 64 << 10

// Handler handles HTTP requests for the pantry.
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

// HandleList handles GET /pantry
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list pantry", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list pantry")
		return
	}

	writeJSON(w, http.StatusOK, ListPantryResponse{Pantry: items})
}

// HandleCreate handles POST /pantry
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePantryItemRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCreateBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.service.Add(r.Context(), req)
	if err != nil {
		if msg, ok := strings.CutPrefix(err.Error(), "validation failed: "); ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		h.logger.Error("failed to create pantry item", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create pantry item")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// HandleDelete handles DELETE /pantry?id=<int>
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete pantry item", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete pantry item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
