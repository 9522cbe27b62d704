package blob

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	appcfg "github.com/fdg312/meal-e/internal/config"
)

// NewBlobStore builds the document store using mode local|s3|auto|redis|memory.
// It returns the store and the mode actually in effect.
func NewBlobStore(cfg appcfg.BlobConfig, logger *zap.Logger) (Store, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("blob")

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		store, err := NewLocalStore(cfg.DocumentsDir)
		if err != nil {
			return nil, "", err
		}
		log.Info("mode=local (forced)", zap.String("dir", cfg.DocumentsDir))
		return store, appcfg.BlobModeLocal, nil

	case appcfg.BlobModeMemory:
		log.Info("mode=memory (documents are not persisted)")
		return NewMemoryStore(), appcfg.BlobModeMemory, nil

	case appcfg.BlobModeAuto:
		if !cfg.S3.IsConfigured() {
			log.Info("mode=local (auto, S3 not configured)",
				zap.Strings("missing", cfg.S3.MissingRequired()),
				zap.String("s3", cfg.S3.DiagnosticsSummary()),
			)
			store, err := NewLocalStore(cfg.DocumentsDir)
			if err != nil {
				return nil, "", err
			}
			return store, appcfg.BlobModeLocal, nil
		}

		store, err := newS3FromConfig(cfg.S3)
		if err != nil {
			log.Warn("s3 init failed, fallback=local", zap.Error(err))
			local, lerr := NewLocalStore(cfg.DocumentsDir)
			if lerr != nil {
				return nil, "", lerr
			}
			return local, appcfg.BlobModeLocal, nil
		}

		log.Info("mode=s3 (auto, configured)", zap.String("s3", cfg.S3.DiagnosticsSummary()))
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeS3:
		if !cfg.S3.IsConfigured() {
			missing := cfg.S3.MissingRequired()
			return nil, "", fmt.Errorf("BLOB_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		store, err := newS3FromConfig(cfg.S3)
		if err != nil {
			return nil, "", fmt.Errorf("BLOB_MODE=s3 init failed: %w", err)
		}

		log.Info("mode=s3 (forced)", zap.String("s3", cfg.S3.DiagnosticsSummary()))
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeRedis:
		store, err := NewRedisStore(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, "", fmt.Errorf("BLOB_MODE=redis init failed: %w", err)
		}
		log.Info("mode=redis", zap.String("prefix", cfg.RedisPrefix))
		return store, appcfg.BlobModeRedis, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func newS3FromConfig(c appcfg.S3Config) (*S3Store, error) {
	return NewS3Store(c.Endpoint, c.Region, c.Bucket, c.AccessKeyID, c.SecretAccessKey, c.Prefix)
}
