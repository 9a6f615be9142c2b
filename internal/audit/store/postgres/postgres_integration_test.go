//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"riskserve/internal/audit"
	"riskserve/internal/audit/store/postgres"
)

type PostgresStoreSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *sql.DB
	store     *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("riskserve"),
		tcpostgres.WithUsername("riskserve"),
		tcpostgres.WithPassword("riskserve"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sql.Open("postgres", dsn)
	s.Require().NoError(err)
	s.Require().NoError(db.PingContext(ctx))
	s.db = db

	s.store = postgres.New(db)
	s.Require().NoError(s.store.EnsureSchema(ctx))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.ExecContext(context.Background(), "TRUNCATE TABLE inference_log")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestAppendAndListRecent() {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := s.store.Append(ctx, audit.Record{
			Timestamp:     base.Add(time.Duration(i) * time.Minute),
			RequestID:     "req-" + string(rune('a'+i)),
			RequestType:   audit.KindRaw,
			NRecords:      1,
			RiskScore:     0.1 * float64(i+1),
			RiskBucket:    "low",
			RiskCode:      0,
			Confidence:    0.8,
			NFeaturesUsed: 23,
			ModelVersion:  "best_model_v1.json",
			RuntimeSec:    0.001,
		})
		s.Require().NoError(err)
	}

	recs, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal("req-c", recs[0].RequestID, "newest first")
	s.Equal("req-b", recs[1].RequestID)
	s.InDelta(0.3, recs[0].RiskScore, 1e-9)
}

func (s *PostgresStoreSuite) TestEnsureSchemaIdempotent() {
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}
