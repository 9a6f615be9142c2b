// Package handler exposes the registry admin endpoints. Promote is how the
// training collaborator activates a newly trained model without restarting
// the server fleet; the pointer read exists for operator inspection.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskserve/internal/registry"
	dErrors "riskserve/pkg/domain-errors"
	"riskserve/pkg/platform/httputil"
	"riskserve/pkg/requestcontext"
)

// Reloader is notified after a successful promote so serving picks up the
// new artifacts without a restart.
type Reloader interface {
	Reload() error
}

// Handler wires registry admin endpoints to the registry.
type Handler struct {
	registry *registry.Registry
	reloader Reloader
	logger   *slog.Logger
}

// New constructs a registry handler with its dependencies. reloader may be
// nil when nothing serves the promoted model in-process.
func New(reg *registry.Registry, reloader Reloader, logger *slog.Logger) *Handler {
	return &Handler{registry: reg, reloader: reloader, logger: logger}
}

// Register mounts registry endpoints on the router. Callers are expected to
// wrap the router with the admin bearer middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/registry/promote", h.HandlePromote)
	r.Get("/admin/registry/pointer", h.HandlePointer)
}

// HandlePromote handles POST /admin/registry/promote.
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PromoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.registry.WritePointer(registry.PromoteRequest{
		ModelPath: req.ModelPath,
		Name:      req.Name,
		Version:   req.Version,
		Meta:      req.Meta,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "model promote failed",
			"request_id", requestID,
			"model_path", req.ModelPath,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "promote failed"))
		return
	}

	h.logger.InfoContext(ctx, "model promoted",
		"request_id", requestID,
		"model", doc.Active.Name,
		"version", doc.Active.Version,
		"path", doc.Active.Path,
	)

	// Reload is best effort: the pointer is already durable, and a load
	// failure leaves the previous artifacts serving.
	if h.reloader != nil {
		if err := h.reloader.Reload(); err != nil {
			h.logger.ErrorContext(ctx, "artifact reload after promote failed",
				"request_id", requestID,
				"path", doc.Active.Path,
				"error", err,
			)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, doc)
}

// HandlePointer handles GET /admin/registry/pointer.
func (h *Handler) HandlePointer(w http.ResponseWriter, r *http.Request) {
	doc, err := h.registry.ReadPointer()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if doc == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no model has been promoted yet"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}
