// Package registry persists the pointer document that names the active model
// artifact. Writers replace the document atomically; readers either see the
// previous version or the new one, never a torn write.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	dErrors "riskserve/pkg/domain-errors"
)

// Defaults are the statically configured fallback paths used when no pointer
// has been written yet (first-run condition) or its target is missing.
type Defaults struct {
	ModelPath    string
	EncoderPath  string
	ScalerPath   string
	FeaturesPath string
}

// Registry reads and writes the active-model pointer document.
type Registry struct {
	pointerPath string
	defaults    Defaults
}

func New(pointerPath string, defaults Defaults) *Registry {
	return &Registry{pointerPath: pointerPath, defaults: defaults}
}

// PointerPath returns the location of the pointer document.
func (r *Registry) PointerPath() string {
	return r.pointerPath
}

// WritePointer composes a new pointer document for the given model, hashes the
// model and each companion artifact, and atomically replaces the pointer file.
// Missing artifact files yield null hashes, not errors, so training can
// promote before every companion exists.
func (r *Registry) WritePointer(req PromoteRequest) (*Pointer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "best_model"
	}
	modelPath := req.ModelPath
	if modelPath == "" {
		modelPath = r.defaults.ModelPath
	}

	doc := &Pointer{
		Active: ActiveModel{
			Name:     name,
			Version:  req.Version,
			Filename: filepath.Base(modelPath),
			Path:     modelPath,
		},
		Artifacts: ArtifactPaths{
			EncoderPath:  r.defaults.EncoderPath,
			ScalerPath:   r.defaults.ScalerPath,
			FeaturesPath: r.defaults.FeaturesPath,
		},
		Hashes: ArtifactHashes{
			ModelSHA256:    sha256File(modelPath),
			EncoderSHA256:  sha256File(r.defaults.EncoderPath),
			ScalerSHA256:   sha256File(r.defaults.ScalerPath),
			FeaturesSHA256: sha256File(r.defaults.FeaturesPath),
		},
		Meta:      req.Meta,
		UpdatedAt: time.Now().UTC(),
	}

	if err := r.atomicWriteJSON(doc); err != nil {
		return nil, fmt.Errorf("write pointer: %w", err)
	}
	return doc, nil
}

// ReadPointer returns the current pointer document, or nil when none has been
// written yet. A pointer file that exists but cannot be parsed is corrupt
// registry state, not an absent one.
func (r *Registry) ReadPointer() (*Pointer, error) {
	data, err := os.ReadFile(r.pointerPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeCorruptState, "pointer file unreadable")
	}

	var doc Pointer
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCorruptState, "pointer file unparseable")
	}
	return &doc, nil
}

// ResolveActiveModel prefers the pointer's active path when it exists on
// disk, falling back to the configured default model path with empty metadata
// so the server can start before any model has been promoted.
func (r *Registry) ResolveActiveModel() (string, map[string]any) {
	doc, err := r.ReadPointer()
	if err == nil && doc != nil && doc.Active.Path != "" {
		if _, statErr := os.Stat(doc.Active.Path); statErr == nil {
			return doc.Active.Path, doc.Meta
		}
	}
	return r.defaults.ModelPath, map[string]any{}
}

// atomicWriteJSON writes to a temporary sibling, syncs it to disk, then
// renames over the target. A crash between any two steps leaves the previous
// pointer intact.
func (r *Registry) atomicWriteJSON(doc *Pointer) error {
	if err := os.MkdirAll(filepath.Dir(r.pointerPath), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.pointerPath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, r.pointerPath)
}

// sha256File digests a file's content, returning nil when the file does not
// exist.
func sha256File(path string) *string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil
	}
	sum := hex.EncodeToString(h.Sum(nil))
	return &sum
}
