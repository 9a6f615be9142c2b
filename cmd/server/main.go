// Command server runs the relapse-risk scoring API: model serving, blended
// scoring, the registry admin surface, and the inference audit trail.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"riskserve/internal/admintoken"
	"riskserve/internal/audit"
	auditkafka "riskserve/internal/audit/kafka"
	"riskserve/internal/audit/store/csvfile"
	auditpg "riskserve/internal/audit/store/postgres"
	"riskserve/internal/model"
	"riskserve/internal/platform/config"
	"riskserve/internal/platform/httpserver"
	"riskserve/internal/platform/logger"
	platformredis "riskserve/internal/platform/redis"
	"riskserve/internal/registry"
	registryhandler "riskserve/internal/registry/handler"
	"riskserve/internal/scoring"
	scoringhandler "riskserve/internal/scoring/handler"
	"riskserve/internal/scoring/metrics"
	"riskserve/pkg/platform/middleware/admin"
	"riskserve/pkg/platform/middleware/cors"
	"riskserve/pkg/platform/middleware/recovery"
	"riskserve/pkg/platform/middleware/requestid"
)

const (
	adminTokenIssuer = "riskserve"
	cacheTTL         = 10 * time.Minute
	shutdownTimeout  = 10 * time.Second
)

// artifactLoader resolves the active model through the registry and installs
// the loaded artifacts into the scoring service. It backs both startup and
// the post-promote reload.
type artifactLoader struct {
	cfg     config.Config
	reg     *registry.Registry
	service *scoring.Service
	logger  *slog.Logger
}

func (l *artifactLoader) Reload() error {
	path, meta := l.reg.ResolveActiveModel()

	arts, err := model.Load(model.Paths{
		Model:    path,
		Scaler:   l.cfg.ScalerPath,
		Features: l.cfg.FeaturesPath,
		Encoder:  l.cfg.EncoderPath,
	}, meta)
	if err != nil {
		return err
	}

	l.service.SetArtifacts(arts)
	l.logger.Info("model artifacts loaded",
		"model_version", arts.Version,
		"model_path", arts.Path,
		"n_features", len(arts.FeatureNames),
	)
	return nil
}

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.New(cfg.PointerPath, registry.Defaults{
		ModelPath:    cfg.ModelPath,
		EncoderPath:  cfg.EncoderPath,
		ScalerPath:   cfg.ScalerPath,
		FeaturesPath: cfg.FeaturesPath,
	})

	// Audit sinks. The CSV log is always on and written inline; Postgres
	// and Kafka join when configured and run behind a queue so the request
	// path never waits on them.
	sinks := []audit.Store{csvfile.New(cfg.InferenceLogPath)}

	var slowSinks []audit.Store
	if cfg.AuditDatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.AuditDatabaseURL)
		if err != nil {
			log.Error("open audit database failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		store := auditpg.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Error("audit schema setup failed", "error", err)
			os.Exit(1)
		}
		slowSinks = append(slowSinks, store)
	}

	if len(cfg.KafkaBrokers) > 0 {
		mirror, err := auditkafka.New(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka audit mirror setup failed", "error", err)
			os.Exit(1)
		}
		defer mirror.Close()
		slowSinks = append(slowSinks, mirror)
	}

	if len(slowSinks) > 0 {
		queue := audit.NewQueue(256)
		worker := audit.NewWorker(audit.NewPublisher(log, slowSinks...), queue.Inbox())
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit worker stopped", "error", err)
			}
		}()
		sinks = append(sinks, queue)
	}

	publisher := audit.NewPublisher(log, sinks...)

	// Optional Redis score cache.
	var cache *scoring.Cache
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = scoring.NewCache(redisClient.Client, cacheTTL, log)
		log.Info("score cache enabled")
	}

	service := scoring.NewService(log, cfg.Alpha, metrics.New(), cache, publisher)

	loader := &artifactLoader{cfg: cfg, reg: reg, service: service, logger: log}
	if err := loader.Reload(); err != nil {
		// Start degraded rather than crash; readiness reports the state.
		log.Warn("starting without model artifacts", "error", err)
	}

	router := chi.NewRouter()
	router.Use(requestid.Middleware)
	router.Use(recovery.Middleware(log))
	router.Use(cors.Middleware(cfg.CORSOrigins))

	scoringhandler.New(service, cfg.APIVersion, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())

	if cfg.AdminJWTKey != "" {
		tokens := admintoken.NewService(cfg.AdminJWTKey, adminTokenIssuer)
		router.Group(func(r chi.Router) {
			r.Use(admin.RequireBearer(tokens, log))
			registryhandler.New(reg, loader, log).Register(r)
		})
	} else {
		log.Warn("admin surface disabled: no signing key configured")
	}

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server starting",
			"addr", cfg.Addr,
			"api_version", cfg.APIVersion,
			"alpha", cfg.Alpha,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
