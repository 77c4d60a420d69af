package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/deploysched/deploysched/internal/domain/model"
	apperrors "github.com/deploysched/deploysched/internal/errors"
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// ParseLimitOffset parses common pagination params and clamps to sane bounds.
// Values above maxLimit are clamped to maxLimit.
func ParseLimitOffset(r *http.Request, defLimit, maxLimit int) (int, int) {
	if maxLimit < 1 {
		maxLimit = 1
	}

	lim := parseIntQuery(r, "limit", defLimit)
	off := parseIntQuery(r, "offset", 0)
	if lim < 1 {
		lim = 1
	}
	if lim > maxLimit {
		lim = maxLimit
	}
	if off < 0 {
		off = 0
	}
	return lim, off
}

// parseJobListOptions reads paging and filters for GET /api/jobs.
func parseJobListOptions(r *http.Request, defLimit, maxLimit int) (model.JobListOptions, error) {
	limit, offset := ParseLimitOffset(r, defLimit, maxLimit)
	opts := model.JobListOptions{Limit: limit, Offset: offset}

	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		status, err := model.ParseJobStatus(v)
		if err != nil {
			return opts, apperrors.ValidationField("status", err.Error())
		}
		opts.Status = &status
	}
	if v := strings.TrimSpace(q.Get("app_name")); v != "" {
		opts.AppName = &v
	}
	return opts, nil
}

// jobIDFromPath returns the {id} path value, writing 400 invalid_id when it is not a UUID.
func jobIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_id",
			Err:     errors.New("job id must be a UUID"),
			Field:   "id",
		})
		return "", false
	}
	return id, true
}
