package handler

import (
	"strings"

	dErrors "riskserve/pkg/domain-errors"
)

// PromoteRequest is the HTTP request body for POST /admin/registry/promote.
type PromoteRequest struct {
	ModelPath string         `json:"model_path"`
	Name      string         `json:"name"`
	Version   int            `json:"version"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *PromoteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.ModelPath = strings.TrimSpace(r.ModelPath)
	if r.ModelPath == "" {
		return dErrors.New(dErrors.CodeValidation, "model_path is required")
	}
	if r.Version < 0 {
		return dErrors.New(dErrors.CodeValidation, "version must not be negative")
	}

	r.Name = strings.TrimSpace(r.Name)
	return nil
}
