package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	BlobModeLocal  = "local"
	BlobModeS3     = "s3"
	BlobModeAuto   = "auto"
	BlobModeRedis  = "redis"
	BlobModeMemory = "memory"
)

const (
	AIModeMock   = "mock"
	AIModeGemini = "gemini"
	AIModeOpenAI = "openai"
)

const (
	AuthModeNone = "none"
	AuthModeDev  = "dev"
)

const (
	DefaultPantryQuery = `SELECT id, name, brand, quantity, serving_size, expiry_date::text,
	calories, carbohydrates, protein, fat, saturated_fat, trans_fat, sugar, added_sugar,
	fiber, sodium, iron, calcium, potassium, vitamin_d
FROM pantry_items ORDER BY id`

	DefaultIngredientsQuery = `SELECT name, brand, quantity, serving_size, expiry_date::text
FROM pantry_items ORDER BY id`

	DefaultDeletePantryQuery = `DELETE FROM pantry_items WHERE id = $1`

	DefaultInsertPantryQuery = `INSERT INTO pantry_items (name, brand, quantity, serving_size, expiry_date,
	calories, carbohydrates, protein, fat, saturated_fat, trans_fat, sugar, added_sugar,
	fiber, sodium, iron, calcium, potassium, vitamin_d)
VALUES ($1, $2, $3, $4, $5::text::date, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
RETURNING id`

	DefaultNutrientsQuery = `SELECT name,
	calories, carbohydrates, protein, fat, saturated_fat, trans_fat, sugar, added_sugar,
	fiber, sodium, iron, calcium, potassium, vitamin_d
FROM ingredient_nutrients WHERE name = ANY($1)`
)

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

// DiagnosticsSummary returns a summary for logging (no secrets)
func (c S3Config) DiagnosticsSummary() string {
	accessKeyStatus := "not set"
	if strings.TrimSpace(c.AccessKeyID) != "" {
		accessKeyStatus = "set"
	}
	secretKeyStatus := "not set"
	if strings.TrimSpace(c.SecretAccessKey) != "" {
		secretKeyStatus = "set"
	}

	return fmt.Sprintf("endpoint=%s region=%s bucket=%s prefix=%s access_key_id=%s secret_access_key=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		nonEmptyOrDash(c.Prefix),
		accessKeyStatus,
		secretKeyStatus,
	)
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

// BlobConfig selects where the preference and meal plan documents live.
type BlobConfig struct {
	Mode         string // local|s3|auto|redis|memory
	DocumentsDir string
	S3           S3Config
	RedisURL     string
	RedisPrefix  string
}

// QueryConfig holds the SQL text used by the postgres gateway.
type QueryConfig struct {
	Pantry      string
	Ingredients string
	Delete      string
	Insert      string
	Nutrients   string
}

type Config struct {
	Env       string // local | staging | prod
	Port      int
	LogLevel  string
	LogFormat string // json | console

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)
	Queries           QueryConfig

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	Blob BlobConfig

	// Authentication
	AuthMode      string // none | dev
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	// AI
	AIMode             string // mock | gemini | openai
	AIMaxOutputTokens  int
	AITemperature      float64
	AITimeoutSeconds   int
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	OpenAIAPIKey       string
	OpenAIModel        string
	PromptTemplatePath string

	// Migrations
	RunMigrationsOnStartup bool

	// Warnings collects non-fatal problems found while loading.
	Warnings []string
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	// APP_ENV (fallback to ENV, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := envInt("PORT", 8080)

	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "debug"
	}
	logFormat := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if logFormat == "" {
		if env == "local" {
			logFormat = "console"
		} else {
			logFormat = "json"
		}
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	queries := QueryConfig{
		Pantry:      envString("SQL_GET_PANTRY_QUERY", DefaultPantryQuery),
		Ingredients: envString("SQL_GET_INGREDIENTS_QUERY", DefaultIngredientsQuery),
		Delete:      envString("SQL_DELETE_ITEM_PANTRY_QUERY", DefaultDeletePantryQuery),
		Insert:      envString("SQL_INSERT_PANTRY_QUERY", DefaultInsertPantryQuery),
		Nutrients:   envString("SQL_GET_INGREDIENTS_NUTRITIONAL_QUERY", DefaultNutrientsQuery),
	}

	runMigrationsOnStartup := parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP")

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := parseBoolEnv("CORS_ALLOW_CREDENTIALS")

	// ---------- Rate Limiting ----------
	rateLimitRPS := envInt("RATE_LIMIT_RPS", 0)
	rateLimitBurst := envInt("RATE_LIMIT_BURST", 0)

	// ---------- Documents ----------
	blobMode, ok := parseBlobMode(os.Getenv("BLOB_MODE"), BlobModeLocal)
	if !ok {
		warnf("unknown BLOB_MODE=%q, fallback to %s", os.Getenv("BLOB_MODE"), BlobModeLocal)
	}
	blobCfg := BlobConfig{
		Mode:         blobMode,
		DocumentsDir: envString("DOCUMENTS_DIR", "json"),
		S3: S3Config{
			Endpoint:        strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			Region:          strings.TrimSpace(os.Getenv("S3_REGION")),
			Bucket:          strings.TrimSpace(os.Getenv("S3_BUCKET")),
			AccessKeyID:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
			SecretAccessKey: strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
			Prefix:          strings.TrimSpace(os.Getenv("S3_PREFIX")),
		},
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
		RedisPrefix: envString("REDIS_PREFIX", "meal-e:"),
	}
	if blobCfg.Mode == BlobModeS3 && !blobCfg.S3.IsConfigured() {
		return nil, fmt.Errorf("BLOB_MODE=s3 requires %v", blobCfg.S3.MissingRequired())
	}
	if blobCfg.Mode == BlobModeRedis && blobCfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required when BLOB_MODE=redis")
	}

	// ---------- Auth ----------
	authMode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if authMode == "" {
		authMode = AuthModeNone
	}
	if authMode != AuthModeNone && authMode != AuthModeDev {
		warnf("unknown AUTH_MODE=%q, fallback to none", authMode)
		authMode = AuthModeNone
	}
	authRequired := authMode != AuthModeNone && parseBoolEnv("AUTH_REQUIRED")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		warnf("JWT_SECRET is set to 'change_me' in non-local environment")
	}
	jwtIssuer := envString("JWT_ISSUER", "meal-e")

	// JWT_TTL_MINUTES (default: 10080 = 7 days)
	jwtTTLMinutes := envInt("JWT_TTL_MINUTES", 10080)
	if jwtTTLMinutes <= 0 {
		jwtTTLMinutes = 10080
	}

	// ---------- AI ----------
	aiMode := strings.ToLower(strings.TrimSpace(os.Getenv("AI_MODE")))
	if aiMode == "" {
		aiMode = AIModeMock
	}
	if aiMode != AIModeMock && aiMode != AIModeGemini && aiMode != AIModeOpenAI {
		warnf("unknown AI_MODE=%q, fallback to %s", aiMode, AIModeMock)
		aiMode = AIModeMock
	}

	aiMaxOutputTokens := envInt("AI_MAX_OUTPUT_TOKENS", 8192)
	if aiMaxOutputTokens <= 0 {
		aiMaxOutputTokens = 8192
	}

	aiTemperature := envFloat("AI_TEMPERATURE", 0.7)
	if aiTemperature < 0 {
		aiTemperature = 0
	}
	if aiTemperature > 2 {
		aiTemperature = 2
	}

	aiTimeoutSeconds := envInt("AI_TIMEOUT_SECONDS", 60)
	if aiTimeoutSeconds <= 0 {
		aiTimeoutSeconds = 60
	}

	geminiAPIKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	openAIAPIKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	if aiMode == AIModeGemini && geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required when AI_MODE=gemini")
	}
	if aiMode == AIModeOpenAI && openAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required when AI_MODE=openai")
	}

	return &Config{
		Env:       env,
		Port:      port,
		LogLevel:  logLevel,
		LogFormat: logFormat,

		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,
		Queries:           queries,

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		Blob: blobCfg,

		AuthMode:      authMode,
		AuthRequired:  authRequired,
		JWTSecret:     jwtSecret,
		JWTIssuer:     jwtIssuer,
		JWTTTLMinutes: jwtTTLMinutes,

		AIMode:             aiMode,
		AIMaxOutputTokens:  aiMaxOutputTokens,
		AITemperature:      aiTemperature,
		AITimeoutSeconds:   aiTimeoutSeconds,
		GeminiAPIKey:       geminiAPIKey,
		GeminiModel:        envString("GEMINI_MODEL", "gemini-3-flash-preview"),
		GeminiBaseURL:      envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:       openAIAPIKey,
		OpenAIModel:        envString("OPENAI_MODEL", "gpt-4.1-mini"),
		PromptTemplatePath: strings.TrimSpace(os.Getenv("PROMPT_TEMPLATE_PATH")),

		RunMigrationsOnStartup: runMigrationsOnStartup,

		Warnings: warnings,
	}, nil
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8081"}
		}
		return nil
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseBlobMode(raw string, defaultVal string) (string, bool) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	if mode == "" {
		return defaultVal, true
	}
	switch mode {
	case BlobModeLocal, BlobModeS3, BlobModeAuto, BlobModeRedis, BlobModeMemory:
		return mode, true
	default:
		return defaultVal, false
	}
}

func envString(key string, defaultVal string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	return v
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
