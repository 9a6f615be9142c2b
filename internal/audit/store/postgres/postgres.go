package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"riskserve/internal/audit"
)

// Store persists inference records in PostgreSQL. Rows are append-only; the
// table doubles as the query surface for offline drift review.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the inference log table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS inference_log (
			id UUID PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			request_id TEXT NOT NULL DEFAULT '',
			request_type TEXT NOT NULL,
			n_records INTEGER NOT NULL,
			risk_score DOUBLE PRECISION NOT NULL,
			risk_bucket TEXT NOT NULL,
			risk_code INTEGER NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			n_features_used INTEGER NOT NULL,
			model_version TEXT NOT NULL,
			runtime_sec DOUBLE PRECISION NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create inference_log table: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, rec audit.Record) error {
	query := `
		INSERT INTO inference_log (
			id, ts, request_id, request_type, n_records,
			risk_score, risk_bucket, risk_code, confidence,
			n_features_used, model_version, runtime_sec
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		rec.Timestamp,
		rec.RequestID,
		rec.RequestType,
		rec.NRecords,
		rec.RiskScore,
		rec.RiskBucket,
		rec.RiskCode,
		rec.Confidence,
		rec.NFeaturesUsed,
		rec.ModelVersion,
		rec.RuntimeSec,
	)
	if err != nil {
		return fmt.Errorf("insert inference_log row: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records ordered newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ts, request_id, request_type, n_records,
		       risk_score, risk_bucket, risk_code, confidence,
		       n_features_used, model_version, runtime_sec
		FROM inference_log
		ORDER BY ts DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query inference_log: %w", err)
	}
	defer rows.Close()

	var out []audit.Record
	for rows.Next() {
		var rec audit.Record
		if err := rows.Scan(
			&rec.Timestamp,
			&rec.RequestID,
			&rec.RequestType,
			&rec.NRecords,
			&rec.RiskScore,
			&rec.RiskBucket,
			&rec.RiskCode,
			&rec.Confidence,
			&rec.NFeaturesUsed,
			&rec.ModelVersion,
			&rec.RuntimeSec,
		); err != nil {
			return nil, fmt.Errorf("scan inference_log row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inference_log rows: %w", err)
	}
	return out, nil
}
