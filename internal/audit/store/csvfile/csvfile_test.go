package csvfile

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskserve/internal/audit"
)

func TestStoreAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "inference_log.csv")
	store := New(path)

	rec := audit.Record{
		Timestamp:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		RequestType:   audit.KindRaw,
		NRecords:      1,
		RiskScore:     0.735,
		RiskBucket:    "high",
		RiskCode:      2,
		Confidence:    0.47,
		NFeaturesUsed: 23,
		ModelVersion:  "best_model_v1.json",
		RuntimeSec:    0.002,
	}

	require.NoError(t, store.Append(context.Background(), rec))
	rec.RequestType = audit.KindBatch
	rec.NRecords = 4
	require.NoError(t, store.Append(context.Background(), rec))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two records")

	assert.Equal(t, header, rows[0])
	assert.Equal(t, "2026-03-01T12:00:00Z", rows[1][0])
	assert.Equal(t, "raw", rows[1][1])
	assert.Equal(t, "0.735", rows[1][3])
	assert.Equal(t, "high", rows[1][4])
	assert.Equal(t, "2", rows[1][5])
	assert.Equal(t, "batch", rows[2][1])
	assert.Equal(t, "4", rows[2][2])
}

func TestStoreAppendConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inference_log.csv")
	store := New(path)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- store.Append(context.Background(), audit.Record{
				Timestamp:   time.Now().UTC(),
				RequestType: audit.KindRaw,
				NRecords:    1,
			})
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 9, "exactly one header despite concurrent writers")
}
