package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskserve/internal/registry"
	"riskserve/internal/registry/handler"
)

// stubReloader records whether a promote triggered a reload.
type stubReloader struct {
	calls int
	err   error
}

func (s *stubReloader) Reload() error {
	s.calls++
	return s.err
}

func newRouter(t *testing.T, reloader handler.Reloader) (chi.Router, *registry.Registry) {
	t.Helper()

	dir := t.TempDir()
	reg := registry.New(filepath.Join(dir, "active_model.json"), registry.Defaults{
		ModelPath: filepath.Join(dir, "best_model.json"),
	})

	router := chi.NewRouter()
	handler.New(reg, reloader, slog.New(slog.DiscardHandler)).Register(router)
	return router, reg
}

func promoteBody(t *testing.T, modelPath string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"model_path": modelPath,
		"name":       "best_model",
		"version":    3,
		"meta":       map[string]any{"auc": 0.91},
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestHandlePromote(t *testing.T) {
	reloader := &stubReloader{}
	router, reg := newRouter(t, reloader)

	req := httptest.NewRequest(http.MethodPost, "/admin/registry/promote", promoteBody(t, "artifacts/models/best_model_v3.json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc registry.Pointer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "best_model", doc.Active.Name)
	assert.Equal(t, 3, doc.Active.Version)
	assert.Equal(t, "best_model_v3.json", doc.Active.Filename)
	assert.Equal(t, 0.91, doc.Meta["auc"])

	assert.Equal(t, 1, reloader.calls, "promote triggers an artifact reload")

	persisted, err := reg.ReadPointer()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, doc.Active.Path, persisted.Active.Path)
}

func TestHandlePromoteReloadFailureStillSucceeds(t *testing.T) {
	reloader := &stubReloader{err: errors.New("artifact unreadable")}
	router, _ := newRouter(t, reloader)

	req := httptest.NewRequest(http.MethodPost, "/admin/registry/promote", promoteBody(t, "artifacts/models/best_model_v3.json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// The pointer write already succeeded; a reload failure is logged, not
	// surfaced, and the previous artifacts keep serving.
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, reloader.calls)
}

func TestHandlePromoteNilReloader(t *testing.T) {
	router, _ := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/registry/promote", promoteBody(t, "artifacts/models/best_model_v3.json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHandlePromoteValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "missing model_path", body: `{"name":"best_model","version":1}`},
		{name: "blank model_path", body: `{"model_path":"   ","version":1}`},
		{name: "negative version", body: `{"model_path":"m.json","version":-1}`},
		{name: "malformed body", body: `{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reloader := &stubReloader{}
			router, _ := newRouter(t, reloader)

			req := httptest.NewRequest(http.MethodPost, "/admin/registry/promote", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, reloader.calls, "invalid promote must not reload")
		})
	}
}

func TestHandlePointerBeforeAnyPromote(t *testing.T) {
	router, _ := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/registry/pointer", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePointerAfterPromote(t *testing.T) {
	router, _ := newRouter(t, &stubReloader{})

	promote := httptest.NewRequest(http.MethodPost, "/admin/registry/promote", promoteBody(t, "artifacts/models/best_model_v3.json"))
	router.ServeHTTP(httptest.NewRecorder(), promote)

	req := httptest.NewRequest(http.MethodGet, "/admin/registry/pointer", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc registry.Pointer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "artifacts/models/best_model_v3.json", doc.Active.Path)
	assert.Nil(t, doc.Hashes.ModelSHA256, "absent artifact file records a null hash")
}
