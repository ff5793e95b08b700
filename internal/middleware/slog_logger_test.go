package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/middleware"
)

// logOne runs a single request through the SlogLogger and returns the
// decoded log line.
func logOne(t *testing.T, status int, actor domain.Actor) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middleware.NewSlogLogger(logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/reports/006-02-01-24", nil)
	// Inject what chimiddleware.RequestID and NewIdentityHandler would.
	ctx := context.WithValue(req.Context(), chimiddleware.RequestIDKey, "test-req-id")
	ctx = domain.WithActor(ctx, actor)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	require.Equal(t, status, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSlogLogger_logsRequestFields(t *testing.T) {
	entry := logOne(t, http.StatusOK, domain.Actor{ID: "12345"})

	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/reports/006-02-01-24", entry["path"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.Equal(t, "test-req-id", entry["request_id"])
	assert.Equal(t, "12345", entry["user_id"])
	assert.NotNil(t, entry["duration_ms"])
}

func TestSlogLogger_level(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "INFO"},
		{http.StatusUnprocessableEntity, "INFO"},
		{http.StatusServiceUnavailable, "ERROR"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			entry := logOne(t, tc.status, domain.Actor{})
			assert.Equal(t, tc.level, entry["level"])
			assert.Equal(t, "", entry["user_id"], "anonymous caller")
		})
	}
}
