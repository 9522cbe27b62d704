package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/meal-e/internal/ai"
	"github.com/fdg312/meal-e/internal/blob"
	"github.com/fdg312/meal-e/internal/config"
	"github.com/fdg312/meal-e/internal/dbmigrate"
	"github.com/fdg312/meal-e/internal/httpserver"
	"github.com/fdg312/meal-e/internal/logger"
	"github.com/fdg312/meal-e/internal/storage"
	"github.com/fdg312/meal-e/internal/storage/memory"
	"github.com/fdg312/meal-e/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Env == "local",
	})
	defer log.Sync()

	printStartupBanner(log, cfg)
	for _, w := range cfg.Warnings {
		log.Warn("config", zap.String("warning", w))
	}

	validateProductionConfig(log, cfg)

	if cfg.RunMigrationsOnStartup {
		dbURL, source, _, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			log.Fatal("startup migrations", zap.Error(err))
		}

		log.Info("startup migrations", zap.String("command", "up"), zap.String("using", source))
		if err := dbmigrate.Run("up", dbURL, log.Named("migrate")); err != nil {
			log.Fatal("startup migrations failed", zap.Error(err))
		}
		log.Info("startup migrations: completed")
	}

	store := initStorage(log, cfg)

	blobs, mode, err := blob.NewBlobStore(cfg.Blob, log)
	if err != nil {
		log.Fatal("blob store", zap.Error(err))
	}
	log.Info("documents blob store ready", zap.String("mode", mode))

	provider, err := ai.NewProvider(cfg)
	if err != nil {
		log.Fatal("ai provider", zap.Error(err))
	}

	server := httpserver.New(cfg, httpserver.Deps{
		Storage:  store,
		Blobs:    blobs,
		Provider: provider,
		Logger:   log,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
		cancel()
	}

	if err := server.Close(); err != nil {
		log.Error("failed to close resources", zap.Error(err))
	}
}

// initStorage picks Postgres when a database URL is configured, in-memory otherwise.
func initStorage(log *zap.Logger, cfg *config.Config) storage.Storage {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory storage")
		return memory.New()
	}

	log.Info("connecting to PostgreSQL")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgStorage, err := postgres.New(ctx, cfg.DatabaseURL, cfg.Queries)
	if err != nil {
		if cfg.Env != "local" {
			log.Fatal("PostgreSQL connection failed", zap.Error(err))
		}
		log.Warn("PostgreSQL connection failed, falling back to in-memory storage", zap.Error(err))
		return memory.New()
	}

	log.Info("PostgreSQL connected")
	return pgStorage
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// Secrets are only reported as "set" / "not set".
func printStartupBanner(log *zap.Logger, cfg *config.Config) {
	log.Info("Meal-E API",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
	)

	log.Info("database",
		zap.String("runtime_url", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled)),
		zap.String("pooled", setOrNot(cfg.DatabaseURLPooled)),
		zap.String("direct", setOrNot(cfg.DatabaseURLDirect)),
		zap.Bool("migrations_on_startup", cfg.RunMigrationsOnStartup),
	)

	log.Info("auth",
		zap.String("auth_mode", cfg.AuthMode),
		zap.Bool("auth_required", cfg.AuthRequired),
		zap.String("jwt_secret", secretStatus(cfg.JWTSecret, "change_me")),
	)

	blobFields := []zap.Field{
		zap.String("blob_mode", cfg.Blob.Mode),
		zap.String("documents_dir", cfg.Blob.DocumentsDir),
	}
	switch cfg.Blob.Mode {
	case config.BlobModeS3, config.BlobModeAuto:
		blobFields = append(blobFields, zap.String("s3", cfg.Blob.S3.DiagnosticsSummary()))
	case config.BlobModeRedis:
		blobFields = append(blobFields, zap.String("redis_url", setOrNot(cfg.Blob.RedisURL)))
	}
	log.Info("blob", blobFields...)

	aiFields := []zap.Field{
		zap.String("ai_mode", cfg.AIMode),
		zap.Int("timeout_seconds", cfg.AITimeoutSeconds),
		zap.String("prompt_template", nonEmptyOrDash(cfg.PromptTemplatePath)),
	}
	switch cfg.AIMode {
	case config.AIModeGemini:
		aiFields = append(aiFields,
			zap.String("gemini_model", cfg.GeminiModel),
			zap.String("gemini_api_key", setOrNot(cfg.GeminiAPIKey)),
		)
	case config.AIModeOpenAI:
		aiFields = append(aiFields,
			zap.String("openai_model", cfg.OpenAIModel),
			zap.String("openai_api_key", setOrNot(cfg.OpenAIAPIKey)),
		)
	}
	log.Info("ai", aiFields...)
}

// validateProductionConfig performs fatal checks that only matter in non-local envs.
func validateProductionConfig(log *zap.Logger, cfg *config.Config) {
	isProd := cfg.Env == "production" || cfg.Env == "prod" || cfg.Env == "staging"

	// JWT_SECRET must not be default in production
	if isProd && cfg.AuthRequired && cfg.JWTSecret == "change_me" {
		log.Fatal("JWT_SECRET must not be 'change_me' with AUTH_REQUIRED=1", zap.String("env", cfg.Env))
	}

	// DATABASE_URL must be set in production
	if isProd && cfg.DatabaseURL == "" {
		log.Fatal("no DATABASE_URL configured", zap.String("env", cfg.Env))
	}

	if isProd && cfg.AIMode == config.AIModeMock {
		log.Warn("AI_MODE=mock outside local env, generated plans are placeholders")
	}
}

// ---- helpers (no secrets) ----

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (will use in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}
