// Package handler exposes the scoring surface: health, the three scoring
// shapes, batch and CSV ingestion, and the operator debug endpoints.
package handler

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"riskserve/internal/audit"
	"riskserve/internal/features"
	"riskserve/internal/scoring"
	dErrors "riskserve/pkg/domain-errors"
	"riskserve/pkg/platform/httputil"
	"riskserve/pkg/requestcontext"
)

const (
	maxCSVUploadBytes = 10 << 20
	maxCSVRecords     = 1000
	debugVectorTopN   = 25
)

// Service defines the scoring operations the handlers depend on.
type Service interface {
	Score(ctx context.Context, kind string, rows []map[string]any) (*scoring.Output, error)
	DebugVector(row map[string]any, topN int) (*features.Matrix, []scoring.FeatureValue, error)
	Status() scoring.Status
	Alpha() float64
}

// Handler wires scoring endpoints to the scoring service.
type Handler struct {
	service    Service
	apiVersion string
	logger     *slog.Logger
}

// New constructs a scoring handler with its dependencies. apiVersion is
// echoed by the liveness endpoint.
func New(service Service, apiVersion string, logger *slog.Logger) *Handler {
	return &Handler{service: service, apiVersion: apiVersion, logger: logger}
}

// Register mounts scoring endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/live", h.HandleLive)
	r.Get("/healthz", h.HandleHealth)

	r.Post("/predict", h.HandlePredict)
	r.Post("/predict_friendly", h.HandlePredictFriendly)
	r.Post("/predict_relapse_overview", h.HandleOverview)
	r.Post("/batch_predict", h.HandleBatchPredict)
	r.Post("/batch_predict_csv", h.HandleBatchPredictCSV)

	r.Post("/debug_relapse_overview", h.HandleDebugOverview)
	r.Post("/debug_vector", h.HandleDebugVector)
}

// HandleLive handles GET /live. It must succeed even when no model has
// loaded so orchestration can tell "process up" from "model ready".
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, NewLiveResponse(h.apiVersion, h.service.Status(), h.service.Alpha()))
}

// HandleHealth handles GET /healthz, the readiness contract.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status()
	resp := &HealthResponse{
		OK:           status.Ready,
		NFeatures:    status.FeatureCount,
		ModelVersion: status.ModelVersion,
	}
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, code, resp)
}

// HandlePredict handles POST /predict: already-encoded numeric features.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	scoreSingle(h, w, r, audit.KindRaw, (*PredictRequest).Row)
}

// HandlePredictFriendly handles POST /predict_friendly: readable frontend
// inputs encoded internally.
func (h *Handler) HandlePredictFriendly(w http.ResponseWriter, r *http.Request) {
	scoreSingle(h, w, r, audit.KindFriendly, (*PredictFriendlyRequest).Row)
}

// HandleOverview handles POST /predict_relapse_overview: the richer shape
// with rolling-window aggregates.
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	scoreSingle(h, w, r, audit.KindOverview, (*OverviewRequest).Row)
}

// scoreSingle decodes one request shape, scores its canonical row, and
// writes the single-record response.
func scoreSingle[T any, PT interface {
	*T
	httputil.Validatable
}](h *Handler, w http.ResponseWriter, r *http.Request, kind string, row func(PT) map[string]any) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[T, PT](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	out, err := h.service.Score(ctx, kind, []map[string]any{row(req)})
	if err != nil {
		h.logger.ErrorContext(ctx, "scoring failed",
			"request_id", requestID,
			"kind", kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "record scored",
		"request_id", requestID,
		"kind", kind,
		"bucket", out.Predictions[0].Bucket,
		"model_version", out.ModelVersion,
		"duration_ms", out.Runtime.Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromOutput(out, h.service.Alpha()))
}

// HandleBatchPredict handles POST /batch_predict.
func (h *Handler) HandleBatchPredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchPredictRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	out, err := h.service.Score(ctx, audit.KindBatch, req.Rows())
	if err != nil {
		h.logger.ErrorContext(ctx, "batch scoring failed",
			"request_id", requestID,
			"records", len(req.Records),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "batch scored",
		"request_id", requestID,
		"records", len(req.Records),
		"duration_ms", out.Runtime.Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromBatchOutput(out))
}

// HandleBatchPredictCSV handles POST /batch_predict_csv: a multipart CSV
// upload scored as one batch. Cells go through the same permissive coercion
// as JSON rows; a malformed file is a client error, a malformed cell is not.
func (h *Handler) HandleBatchPredictCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	rows, err := h.readCSVRows(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out, err := h.service.Score(ctx, audit.KindCSV, rows)
	if err != nil {
		h.logger.ErrorContext(ctx, "csv scoring failed",
			"request_id", requestID,
			"records", len(rows),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "csv batch scored",
		"request_id", requestID,
		"records", len(rows),
		"duration_ms", out.Runtime.Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromBatchOutput(out))
}

func (h *Handler) readCSVRows(w http.ResponseWriter, r *http.Request) ([]map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "multipart field 'file' is required")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "CSV file is empty or unreadable")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]any
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid CSV")
		}
		if len(rows) >= maxCSVRecords {
			return nil, dErrors.Newf(dErrors.CodeValidation, "CSV must contain at most %d records", maxCSVRecords)
		}
		row := make(map[string]any, len(header))
		for i, cell := range cells {
			if i < len(header) {
				row[header[i]] = cell
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "CSV must contain at least one record")
	}
	return rows, nil
}

// HandleDebugOverview handles POST /debug_relapse_overview: the rule
// component breakdown without touching the model or the audit trail.
func (h *Handler) HandleDebugOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OverviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	comps := scoring.RuleComponents(features.RecordFromMap(req.Row()))
	httputil.WriteJSON(w, http.StatusOK, &DebugOverviewResponse{
		RuleScore:  comps.FinalScore,
		RawScore:   comps.FinalScoreRaw,
		Components: comps,
	})
}

// HandleDebugVector handles POST /debug_vector: the scaled feature vector's
// largest entries by magnitude.
func (h *Handler) HandleDebugVector(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PredictRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	matrix, top, err := h.service.DebugVector(req.Row(), debugVectorTopN)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &DebugVectorResponse{
		NFeatures:      len(matrix.Columns),
		TopAbsFeatures: top,
	})
}
