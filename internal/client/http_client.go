package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deploysched/deploysched/internal/domain/model"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultPageSize = 200
	maxErrorBody    = 64 * 1024
)

// HTTPClientOptions configures HTTPClient.
type HTTPClientOptions struct {
	BaseURL    string
	Token      string       // Optional: bearer token
	HTTPClient *http.Client // Optional: defaults to a client with a 15s timeout
}

// HTTPClient implements SchedulingServiceClient over the JSON API.
type HTTPClient struct {
	base     *url.URL
	token    string
	http     *http.Client
	pageSize int
}

var _ SchedulingServiceClient = (*HTTPClient)(nil)

// NewHTTPClient validates the base URL and builds a client.
func NewHTTPClient(opts HTTPClientOptions) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("invalid scheduling service URL %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPClient{
		base:     base,
		token:    strings.TrimSpace(opts.Token),
		http:     hc,
		pageSize: defaultPageSize,
	}, nil
}

// List returns every job, newest first, paging through the service.
// The service may cap the page size, so paging ends on the first empty page.
func (c *HTTPClient) List(ctx context.Context) ([]model.Job, error) {
	out := []model.Job{}
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(c.pageSize))
		q.Set("offset", strconv.Itoa(len(out)))

		var page []model.Job
		if err := c.do(ctx, http.MethodGet, "/api/jobs?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return out, nil
		}
		out = append(out, page...)
	}
}

// Get returns one job.
func (c *HTTPClient) Get(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	if err := c.do(ctx, http.MethodGet, jobPath(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Create submits a validated request.
func (c *HTTPClient) Create(ctx context.Context, req model.JobRequest) (*model.Job, error) {
	var job model.Job
	if err := c.do(ctx, http.MethodPost, "/api/jobs", req.Raw(), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Update replaces the request of a pending job.
func (c *HTTPClient) Update(ctx context.Context, id string, req model.JobRequest) (*model.Job, error) {
	var job model.Job
	if err := c.do(ctx, http.MethodPut, jobPath(id), req.Raw(), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Delete permanently removes a job.
func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, jobPath(id), nil, nil)
}

// Executions lists the engine reports of a job.
func (c *HTTPClient) Executions(ctx context.Context, id string) ([]model.JobExecution, error) {
	var out []model.JobExecution
	if err := c.do(ctx, http.MethodGet, jobPath(id)+"/executions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VersionModes fetches the version mode descriptions.
func (c *HTTPClient) VersionModes(ctx context.Context) ([]model.VersionModeInfo, error) {
	var out []model.VersionModeInfo
	if err := c.do(ctx, http.MethodGet, "/api/version-modes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FormDefaults fetches the values a new request starts with.
func (c *HTTPClient) FormDefaults(ctx context.Context) (*model.FormDefaultsView, error) {
	var out model.FormDefaultsView
	if err := c.do(ctx, http.MethodGet, "/api/form-defaults", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func jobPath(id string) string {
	return "/api/jobs/" + url.PathEscape(id)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
	Kind    string `json:"kind"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ServiceError{Code: CodeTransport, Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeServiceError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ServiceError{
			Code:       CodeTransport,
			Message:    "malformed response: " + err.Error(),
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}
	return nil
}

func decodeServiceError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil || (eb.Error == "" && eb.Message == "") {
		eb = errorBody{Message: strings.TrimSpace(string(raw))}
	}
	if eb.Message == "" {
		eb.Message = http.StatusText(resp.StatusCode)
	}
	se := &ServiceError{
		Code:       codeForResponse(resp.StatusCode, eb.Error),
		Message:    eb.Message,
		Field:      eb.Field,
		Kind:       eb.Kind,
		StatusCode: resp.StatusCode,
	}
	if eb.Error != "" && eb.Error != se.Code {
		se.Cause = errors.New(eb.Error)
	}
	return se
}
