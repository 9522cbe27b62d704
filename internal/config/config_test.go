package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "ENV", "PORT", "LOG_LEVEL", "LOG_FORMAT",
		"DATABASE_URL", "DATABASE_URL_POOLED", "DATABASE_URL_DIRECT",
		"SQL_GET_PANTRY_QUERY", "SQL_GET_INGREDIENTS_NUTRITIONAL_QUERY",
		"BLOB_MODE", "DOCUMENTS_DIR", "REDIS_URL",
		"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
		"AUTH_MODE", "AUTH_REQUIRED", "JWT_SECRET",
		"AI_MODE", "AI_TIMEOUT_SECONDS", "GEMINI_API_KEY", "GEMINI_MODEL", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, BlobModeLocal, cfg.Blob.Mode)
	assert.Equal(t, "json", cfg.Blob.DocumentsDir)
	assert.Equal(t, AIModeMock, cfg.AIMode)
	assert.Equal(t, "gemini-3-flash-preview", cfg.GeminiModel)
	assert.Equal(t, 60, cfg.AITimeoutSeconds)
	assert.Equal(t, "none", cfg.AuthMode)
	assert.False(t, cfg.AuthRequired)
	assert.Equal(t, DefaultNutrientsQuery, cfg.Queries.Nutrients)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadDatabasePriority(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://plain")
	t.Setenv("DATABASE_URL_POOLED", "postgres://pooled")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://pooled", cfg.DatabaseURL)
	assert.Equal(t, "postgres://plain", cfg.DatabaseURLRaw)
}

func TestLoadQueryOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("SQL_GET_PANTRY_QUERY", "SELECT 1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", cfg.Queries.Pantry)
	assert.Equal(t, DefaultIngredientsQuery, cfg.Queries.Ingredients)
}

func TestLoadUnknownModesFallBackWithWarnings(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLOB_MODE", "ftp")
	t.Setenv("AI_MODE", "llama")
	t.Setenv("AUTH_MODE", "siwa")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BlobModeLocal, cfg.Blob.Mode)
	assert.Equal(t, AIModeMock, cfg.AIMode)
	assert.Equal(t, "none", cfg.AuthMode)
	assert.Len(t, cfg.Warnings, 3)
}

func TestLoadRequiresProviderKeys(t *testing.T) {
	t.Run("gemini", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AI_MODE", "gemini")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})

	t.Run("openai", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AI_MODE", "openai")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("redis", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BLOB_MODE", "redis")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_URL")
	})
}

func TestLoadAuthRequiredNeedsMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_REQUIRED", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.AuthRequired)

	t.Setenv("AUTH_MODE", "dev")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.AuthRequired)
}

func TestS3ConfigMissingRequired(t *testing.T) {
	cfg := S3Config{
		Endpoint: "https://storage.yandexcloud.net",
		Bucket:   "bucket",
	}
	assert.Equal(t, []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY"}, cfg.MissingRequired())
	assert.False(t, cfg.IsConfigured())

	cfg.Region = "ru-central1"
	cfg.AccessKeyID = "key"
	cfg.SecretAccessKey = "secret"
	assert.True(t, cfg.IsConfigured())
	assert.NotContains(t, cfg.DiagnosticsSummary(), "secret=secret")
}
