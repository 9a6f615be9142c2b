// Package config builds process configuration from environment variables so
// main stays lean. Every option has a documented default; unset means the
// conventional artifacts layout under ./artifacts.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config captures everything the serving process needs at startup.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// APIVersion is echoed in liveness responses.
	APIVersion string

	// Alpha is the global blend weight: 0 = pure model, 1 = pure rules.
	// Read once at startup and immutable afterwards.
	Alpha float64

	// CORSOrigins is the allow-list of cross-origin callers.
	CORSOrigins []string

	// Artifact paths. The training collaborator writes these; the server
	// only reads them.
	ArtifactsDir string
	ModelPath    string
	EncoderPath  string
	ScalerPath   string
	FeaturesPath string

	// PointerPath is the registry pointer document naming the active model.
	PointerPath string

	// InferenceLogPath is the append-only CSV audit trail.
	InferenceLogPath string

	// RedisURL enables the optional score cache when non-empty.
	RedisURL string

	// KafkaBrokers enables the optional audit event mirror when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// AuditDatabaseURL enables the optional Postgres audit store when
	// non-empty. The CSV log is always written regardless.
	AuditDatabaseURL string

	// AdminJWTKey signs and validates admin bearer tokens for the registry
	// endpoints. Empty disables the admin surface entirely.
	AdminJWTKey string

	// Debug lowers the log level to debug.
	Debug bool
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	artifactsDir := getenv("RISKSERVE_ARTIFACTS_DIR", "artifacts")

	cfg := Config{
		Addr:         getenv("RISKSERVE_ADDR", ":8080"),
		APIVersion:   getenv("RISKSERVE_API_VERSION", "1.0.0"),
		Alpha:        getenvFloat("RISKSERVE_ALPHA", 0.5),
		CORSOrigins:  splitList(getenv("RISKSERVE_CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		ArtifactsDir: artifactsDir,
		ModelPath:    getenv("MODEL_PATH", filepath.Join(artifactsDir, "models", "best_model_v1.json")),
		EncoderPath:  getenv("ENCODER_PATH", filepath.Join(artifactsDir, "label_encoder.json")),
		ScalerPath:   getenv("SCALER_PATH", filepath.Join(artifactsDir, "scaler.json")),
		FeaturesPath: getenv("FEATURES_PATH", filepath.Join(artifactsDir, "features.json")),
		PointerPath:  getenv("RISKSERVE_POINTER_PATH", filepath.Join(artifactsDir, "models", "current_model.json")),

		InferenceLogPath: getenv("RISKSERVE_INFERENCE_LOG", filepath.Join(artifactsDir, "inference_outputs", "logs", "inference_log.csv")),

		RedisURL:         os.Getenv("RISKSERVE_REDIS_URL"),
		KafkaBrokers:     splitList(os.Getenv("RISKSERVE_KAFKA_BROKERS")),
		KafkaTopic:       getenv("RISKSERVE_KAFKA_TOPIC", "riskserve.inferences"),
		AuditDatabaseURL: os.Getenv("RISKSERVE_AUDIT_DB_URL"),
		AdminJWTKey:      os.Getenv("RISKSERVE_ADMIN_JWT_KEY"),
		Debug:            os.Getenv("RISKSERVE_DEBUG") != "",
	}

	// Alpha outside [0,1] would silently distort every blend.
	if cfg.Alpha < 0 {
		cfg.Alpha = 0
	}
	if cfg.Alpha > 1 {
		cfg.Alpha = 1
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
