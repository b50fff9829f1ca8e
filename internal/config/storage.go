package config

import (
	"time"

	"docscribe/internal/infra/storage"
	pkgconfig "docscribe/internal/pkg/config"
)

// LoadStorageConfig reads the upload archive settings. Archiving stays disabled
// unless S3_BUCKET is set. AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are
// optional; without them the default AWS credential chain applies.
func LoadStorageConfig(m *pkgconfig.ConfigMetrics) storage.Config {
	l := pkgconfig.NewLoader(m)
	cfg := storage.Config{
		Bucket:          pkgconfig.LoadEnvString("S3_BUCKET", ""),
		Region:          l.String("AWS_REGION", "us-east-1", nil),
		Endpoint:        l.String("S3_ENDPOINT", "", pkgconfig.ValidateHTTPURL),
		AccessKeyID:     pkgconfig.LoadEnvString("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: pkgconfig.LoadEnvString("AWS_SECRET_ACCESS_KEY", ""),
		Prefix:          l.String("S3_PREFIX", "uploads", nil),
		UsePathStyle:    l.Bool("S3_USE_PATH_STYLE", false),
		Timeout:         l.Duration("S3_TIMEOUT", 2*time.Minute, pkgconfig.ValidatePositiveDuration),
	}
	l.Finish()
	return cfg
}
