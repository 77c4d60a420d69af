package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploysched/deploysched/internal/domain/model"
	"github.com/deploysched/deploysched/internal/testutil"
)

var clientTestNow = time.Date(2030, time.June, 1, 9, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(HTTPClientOptions{BaseURL: srv.URL + "/", Token: "api-token", HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewHTTPClient_InvalidURL(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "localhost:8080", "ftp://host", "http://"} {
		_, err := NewHTTPClient(HTTPClientOptions{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestHTTPClient_Create(t *testing.T) {
	t.Parallel()
	req := testutil.NewJobRequest(clientTestNow).Build(clientTestNow, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/jobs", r.URL.Path)
		assert.Equal(t, "Bearer api-token", r.Header.Get("Authorization"))

		var raw model.RawJobRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, "svc-a", raw.AppName)
		assert.Equal(t, "token", raw.JenkinsToken)
		if assert.NotNil(t, raw.SkipClone) {
			assert.True(t, *raw.SkipClone)
		}

		writeJSON(t, w, http.StatusCreated, model.Job{ID: "j1", AppName: raw.AppName, Status: model.JobStatusPending})
	})

	job, err := c.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "j1", job.ID)
	assert.Equal(t, model.JobStatusPending, job.Status)
}

func TestHTTPClient_ListPages(t *testing.T) {
	t.Parallel()
	total := 5

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		page := []model.Job{}
		for i := offset; i < total && i < offset+limit; i++ {
			page = append(page, model.Job{ID: strconv.Itoa(i)})
		}
		writeJSON(t, w, http.StatusOK, page)
	})
	c.pageSize = 2

	jobs, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, total)
	assert.Equal(t, "0", jobs[0].ID)
	assert.Equal(t, "4", jobs[4].ID)
}

func TestHTTPClient_ListFollowsServerPageCap(t *testing.T) {
	t.Parallel()
	const total, serverCap = 250, 100

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit = min(limit, serverCap)
		page := []model.Job{}
		for i := offset; i < total && i < offset+limit; i++ {
			page = append(page, model.Job{ID: strconv.Itoa(i)})
		}
		writeJSON(t, w, http.StatusOK, page)
	})

	jobs, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, total)
	assert.Equal(t, "249", jobs[total-1].ID)
	assert.Equal(t, int32(4), calls.Load(), "three pages and the empty one")
}

func TestHTTPClient_ListKeepsUnknownStatus(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") != "0" {
			writeJSON(t, w, http.StatusOK, []model.Job{})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a","status":"pending"},{"id":"b","status":"running","version_mode":""}]`))
	})

	jobs, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, model.JobStatus("running"), jobs[1].Status)
}

func TestHTTPClient_ListEmpty(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []model.Job{})
	})

	jobs, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestHTTPClient_DeleteNoContent(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/jobs/abc", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "abc"))
}

func TestHTTPClient_ServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      any
		wantCode  string
		wantField string
		wantKind  string
	}{
		{"not editable", http.StatusConflict, errorBody{Error: "not_editable", Message: "only pending jobs can be edited"}, CodeNotEditable, "", ""},
		{"conflict", http.StatusConflict, errorBody{Error: "conflict", Message: "job already has an outcome"}, CodeConflict, "", ""},
		{"not found", http.StatusNotFound, errorBody{Error: "not_found", Message: "scheduled job not found"}, CodeNotFound, "", ""},
		{"validation", http.StatusBadRequest, errorBody{Error: "validation", Message: "bad", Field: "version", Kind: "missing_field"}, CodeValidation, "version", "missing_field"},
		{"invalid id", http.StatusBadRequest, errorBody{Error: "invalid_id", Message: "bad id"}, CodeValidation, "", ""},
		{"unauthorized", http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: "missing token"}, CodeUnauthorized, "", ""},
		{"server error", http.StatusInternalServerError, errorBody{Error: "internal", Message: "boom"}, CodeInternal, "", ""},
		{"teapot", http.StatusTeapot, "short and stout", CodeRejected, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, tt.status, tt.body)
			})

			err := c.Delete(context.Background(), "abc")
			require.Error(t, err)

			var se *ServiceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantCode, se.Code)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.wantField, se.Field)
			assert.Equal(t, tt.wantKind, se.Kind)
			assert.NotEmpty(t, se.Message)
		})
	}
}

func TestHTTPClient_TransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(HTTPClientOptions{BaseURL: url})
	require.NoError(t, err)

	_, err = c.List(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestHTTPClient_NoTokenHeaderWhenUnset(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, []model.VersionModeInfo{{Mode: model.VersionModeLatest}})
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(HTTPClientOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	modes, err := c.VersionModes(context.Background())
	require.NoError(t, err)
	require.Len(t, modes, 1)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()
	assert.True(t, IsNotFound(&ServiceError{Code: CodeNotFound}))
	assert.True(t, IsNotEditable(&ServiceError{Code: CodeNotEditable}))
	assert.True(t, IsUnauthorized(&ServiceError{Code: CodeUnauthorized}))
	assert.Empty(t, ErrorCode(assert.AnError))
	assert.Equal(t, "scheduling service transport: dial", (&ServiceError{Code: CodeTransport, Message: "dial"}).Error())
}
