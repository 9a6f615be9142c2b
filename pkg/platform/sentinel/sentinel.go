package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, artifact loaders, and the
// registry return these (optionally wrapped) so services can translate them
// into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: file or row does not exist
// - ErrCorrupt: resource exists but cannot be parsed
// - ErrUnavailable: sink or cache temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrCorrupt     = errors.New("corrupt")
	ErrUnavailable = errors.New("unavailable")
)
