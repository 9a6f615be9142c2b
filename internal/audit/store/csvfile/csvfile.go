package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"riskserve/internal/audit"
)

var header = []string{
	"timestamp",
	"request_type",
	"n_records",
	"risk_score",
	"risk_bucket",
	"risk_code",
	"confidence",
	"n_features_used",
	"model_version",
	"runtime_sec",
}

// Store appends inference records to a CSV file, writing the header the
// first time the file is created. Safe for concurrent use.
type Store struct {
	path string

	mu sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

// Append writes one record. The parent directory is created on demand so a
// fresh deployment does not need a pre-provisioned log tree.
func (s *Store) Append(_ context.Context, rec audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	_, statErr := os.Stat(s.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open inference log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write inference log header: %w", err)
		}
	}
	if err := w.Write(row(rec)); err != nil {
		return fmt.Errorf("write inference log row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func row(rec audit.Record) []string {
	return []string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.RequestType,
		strconv.Itoa(rec.NRecords),
		strconv.FormatFloat(rec.RiskScore, 'f', -1, 64),
		rec.RiskBucket,
		strconv.Itoa(rec.RiskCode),
		strconv.FormatFloat(rec.Confidence, 'f', -1, 64),
		strconv.Itoa(rec.NFeaturesUsed),
		rec.ModelVersion,
		strconv.FormatFloat(rec.RuntimeSec, 'f', -1, 64),
	}
}
