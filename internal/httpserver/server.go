package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fdg312/meal-e/internal/ai"
	"github.com/fdg312/meal-e/internal/auth"
	"github.com/fdg312/meal-e/internal/blob"
	"github.com/fdg312/meal-e/internal/config"
	"github.com/fdg312/meal-e/internal/documents"
	"github.com/fdg312/meal-e/internal/mealplans"
	"github.com/fdg312/meal-e/internal/nutrients"
	"github.com/fdg312/meal-e/internal/pantry"
	"github.com/fdg312/meal-e/internal/preferences"
	"github.com/fdg312/meal-e/internal/reports"
	"github.com/fdg312/meal-e/internal/storage"
)

// Deps - внешние зависимости сервера, собираются в cmd/api
type Deps struct {
	Storage  storage.Storage
	Blobs    blob.Store
	Provider ai.Provider
	Logger   *zap.Logger
}

// Server представляет HTTP сервер
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	blobs          blob.Store
	provider       ai.Provider
	logger         *zap.Logger
	authMiddleware *auth.Middleware
	httpServer     *http.Server
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:   cfg,
		mux:      http.NewServeMux(),
		storage:  deps.Storage,
		blobs:    deps.Blobs,
		provider: deps.Provider,
		logger:   logger,
	}

	// Регистрируем маршруты
	s.routes()
	return s
}

// routes регистрирует маршруты
func (s *Server) routes() {
	// Health check (no auth required)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Auth API (no auth required)
	authService := auth.NewService(s.config)
	s.authMiddleware = auth.NewMiddleware(s.config, authService, s.logger.Named("auth"))
	if s.config.AuthMode == config.AuthModeDev {
		authHandler := auth.NewHandlers(authService)

		// POST /auth/dev - local dev token
		s.mux.HandleFunc("POST /auth/dev", authHandler.HandleDevAuth)
	}

	docs := documents.NewStore(s.blobs)

	// Pantry API
	pantryService := pantry.NewService(s.storage)
	pantryHandler := pantry.NewHandler(pantryService, s.logger.Named("pantry"))

	// GET /pantry - list pantry items
	s.mux.HandleFunc("GET /pantry", pantryHandler.HandleList)

	// POST /pantry - add pantry item
	s.mux.HandleFunc("POST /pantry", pantryHandler.HandleCreate)

	// DELETE /pantry?id=<int> - delete pantry item
	s.mux.HandleFunc("DELETE /pantry", pantryHandler.HandleDelete)

	// Preferences API
	preferencesService := preferences.NewService(docs, s.logger)
	preferencesHandler := preferences.NewHandler(preferencesService, s.logger.Named("preferences"))

	// GET /preferences - full preferences document
	s.mux.HandleFunc("GET /preferences", preferencesHandler.HandleGet)

	// PUT /preferences - merge partial update
	s.mux.HandleFunc("PUT /preferences", preferencesHandler.HandleUpdate)

	// Meal plan API
	processor := mealplans.NewProcessor(nutrients.NewAggregator(s.storage))
	mealPlanService := mealplans.NewService(s.storage, docs, s.provider, processor, s.logger)
	mealPlanHandler := mealplans.NewHandler(mealPlanService, s.logger.Named("mealplans"))

	// GET /meal-plan?generate=<bool> - cached or freshly generated plan
	s.mux.HandleFunc("GET /meal-plan", mealPlanHandler.HandleGet)

	// Reports API
	reportsHandler := reports.NewHandlers(mealPlanService, reports.NewGenerator(), s.logger.Named("reports"))

	// GET /meal-plan/export?format=pdf|csv - download cached plan
	s.mux.HandleFunc("GET /meal-plan/export", reportsHandler.HandleExport)
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	// Build middleware chain (outermost first): RequestID → Logging → CORS → Rate Limit → Auth → Router
	var handler http.Handler = s.mux
	if s.config.AuthMode != config.AuthModeNone {
		handler = s.authMiddleware.Wrap(handler)
	}
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	handler = LoggingMiddleware(s.logger.Named("http"), handler)
	handler = RequestIDMiddleware(handler)
	return handler
}

// Start запускает HTTP сервер и блокируется до Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server started",
		zap.String("addr", "http://localhost"+addr),
		zap.String("healthz", "http://localhost"+addr+"/healthz"),
		zap.String("pantry", "http://localhost"+addr+"/pantry"),
	)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown останавливает приём запросов и дожидается активных
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Close закрывает storage и blob store
func (s *Server) Close() error {
	var errs []error
	if s.storage != nil {
		errs = append(errs, s.storage.Close())
	}
	if closer, ok := s.blobs.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}
