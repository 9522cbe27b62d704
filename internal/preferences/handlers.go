package preferences

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const (
	maxBodyBytes = 256 << 10

	readErrorMessage = "Unable to retrieve user preferences."
)

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

// HandleGet handles GET /preferences
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to read preferences", zap.Error(err))
		writeError(w, http.StatusInternalServerError, readErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// HandleUpdate handles PUT /preferences with a partial mapping.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var updates map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&updates); err != nil || updates == nil {
		writeError(w, http.StatusBadRequest, "Request body must be a JSON object")
		return
	}

	prefs, err := h.service.Update(r.Context(), updates)
	if err != nil {
		h.logger.Error("failed to update preferences", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Unable to update user preferences.")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
