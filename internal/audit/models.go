package audit

import (
	"context"
	"time"
)

// Request kinds recorded in the inference log.
const (
	KindRaw      = "raw"
	KindFriendly = "friendly"
	KindOverview = "overview"
	KindBatch    = "batch"
	KindCSV      = "csv"
)

// Record is one scored request captured for after-the-fact review. Keep it
// transport-agnostic so stores and sinks can fan out.
type Record struct {
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id"`
	RequestType   string    `json:"request_type"`
	NRecords      int       `json:"n_records"`
	RiskScore     float64   `json:"risk_score"`
	RiskBucket    string    `json:"risk_bucket"`
	RiskCode      int       `json:"risk_code"`
	Confidence    float64   `json:"confidence"`
	NFeaturesUsed int       `json:"n_features_used"`
	ModelVersion  string    `json:"model_version"`
	RuntimeSec    float64   `json:"runtime_sec"`
}

// Store persists inference records. Stores are interface-driven so tests can
// swap in-memory, file-based, or external persistence without rewiring
// scoring code.
type Store interface {
	Append(ctx context.Context, rec Record) error
}

// Reader is implemented by stores that can return recent records.
type Reader interface {
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}
