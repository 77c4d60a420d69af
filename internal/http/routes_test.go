package httpx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/deploysched/deploysched/internal/domain/model"
)

func TestBearerAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic c2VjcmV0", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer s3cret", http.StatusOK},
		{"scheme is case insensitive", "bearer s3cret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newRouterFixture(t, "s3cret")

			r := httptest.NewRequest(http.MethodGet, "/api/version-modes", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			f.handler.ServeHTTP(w, r)

			require.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, "unauthorized", decodeError(t, w).Error)
			}
		})
	}
}

func TestBearerAuth_HealthAndMetricsArePublic(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t, "s3cret")

	for _, path := range []string{"/healthz", "/api/health", "/metrics"} {
		w := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestVersionModesRoute(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t, "")

	w := f.do(t, http.MethodGet, "/api/version-modes", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []model.VersionModeInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, len(model.AllVersionModes()))
	for _, info := range got {
		assert.Equal(t, model.RequirementFor(info.Mode), info.Requirement)
	}
}

func TestFormDefaultsRoute(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t, "")

	w := f.do(t, http.MethodGet, "/api/form-defaults", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.FormDefaultsView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.NotNil(t, got.Request.SkipClone)
	assert.True(t, *got.Request.SkipClone)
	require.NotNil(t, got.Request.SkipBuild)
	assert.False(t, *got.Request.SkipBuild)
	assert.Equal(t, "main", got.Request.AppBranch)
	assert.Equal(t, model.VersionModeManual, got.Request.VersionMode)
	assert.Equal(t, []string{"PROD-01", "STAGING-01"}, got.KnownServers)
	assert.Equal(t, "UTC", got.Timezone)
}

func TestRouteMetricsUsePattern(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t, "")
	f.jobs.EXPECT().GetByID(gomock.Any(), testJobID).Return(nil, model.ErrJobNotFound)

	f.do(t, http.MethodGet, "/api/jobs/"+testJobID, nil)
	w := f.do(t, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `route="GET /api/jobs/{id}"`)
	assert.Contains(t, body, `code="404"`)
	assert.NotContains(t, body, testJobID)
}

func TestUnknownMethodIsRejected(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t, "")

	w := f.do(t, http.MethodPatch, "/api/jobs/"+testJobID, nil)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRequestIDAndLogging(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	h := RequestID()(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestIDFromContext(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	})))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Len(t, w.Header().Get(RequestIDHeader), 20)
	})

	t.Run("propagated", func(t *testing.T) {
		logs.Reset()
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		var entry map[string]any
		require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
		assert.Equal(t, "abc-123", entry["request_id"])
		assert.Equal(t, "WARN", entry["level"])
		assert.InDelta(t, http.StatusTeapot, entry["status"], 0)
	})
}

func TestRecover(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
