package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fdg312/meal-e/internal/mealplans"
)

type PlanSource interface {
	GetCached(ctx context.Context) (mealplans.Plan, error)
}

// Handlers serves exports of the cached meal plan.
type Handlers struct {
	plans     PlanSource
	generator *Generator
	logger    *zap.Logger
}

func NewHandlers(plans PlanSource, generator *Generator, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{plans: plans, generator: generator, logger: logger}
}

// HandleExport handles GET /meal-plan/export?format=pdf|csv
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatCSV {
		writeError(w, http.StatusBadRequest, "format must be pdf or csv")
		return
	}

	plan, err := h.plans.GetCached(r.Context())
	if errors.Is(err, mealplans.ErrPlanNotFound) {
		writeError(w, http.StatusNotFound, mealplans.NotFoundMessage)
		return
	}
	if err != nil {
		h.logger.Error("failed to read cached meal plan", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to read meal plan")
		return
	}

	data, err := h.generator.Generate(plan, format)
	if err != nil {
		h.logger.Error("failed to render meal plan", zap.String("format", format), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to render meal plan")
		return
	}

	contentType := "application/pdf"
	if format == FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="meal_plan.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
