package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/deploysched/deploysched/internal/domain/model"
)

// JobListGenerationKey holds the counter bumped by every job write.
// Page keys embed the generation, so a bump orphans every cached page at once.
const JobListGenerationKey = "jobs:list:generation"

// JobListCacheConfig holds configuration for job list caching.
type JobListCacheConfig struct {
	TTL time.Duration `json:"ttl"`
}

// DefaultJobListCacheConfig returns a JobListCacheConfig with sensible defaults.
func DefaultJobListCacheConfig() JobListCacheConfig {
	return JobListCacheConfig{TTL: 30 * time.Second}
}

// JobListCache caches job list pages in a CacheRepository.
type JobListCache struct {
	cache CacheRepository
	ttl   time.Duration
}

// NewJobListCache creates a new JobListCache.
func NewJobListCache(cache CacheRepository, cfg JobListCacheConfig) *JobListCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultJobListCacheConfig().TTL
	}
	return &JobListCache{cache: cache, ttl: ttl}
}

// Get returns the cached page for opts, or ok=false on a miss.
func (c *JobListCache) Get(ctx context.Context, opts model.JobListOptions) ([]model.Job, bool, error) {
	key, err := c.pageKey(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil || raw == nil {
		return nil, false, err
	}

	jobs := []model.Job{}
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return nil, false, fmt.Errorf("decode cached job page: %w", err)
	}
	return jobs, true, nil
}

// Put stores a page for opts under the current generation.
// Cached jobs carry no Jenkins token since Job's JSON form omits it.
func (c *JobListCache) Put(ctx context.Context, opts model.JobListOptions, jobs []model.Job) error {
	key, err := c.pageKey(ctx, opts)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encode job page: %w", err)
	}
	return c.cache.Set(ctx, key, raw, c.ttl)
}

// Invalidate bumps the generation so no earlier page is served again.
func (c *JobListCache) Invalidate(ctx context.Context) error {
	_, err := c.cache.Incr(ctx, JobListGenerationKey)
	return err
}

func (c *JobListCache) pageKey(ctx context.Context, opts model.JobListOptions) (string, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", err
	}
	return JobListPageKey(gen, opts), nil
}

func (c *JobListCache) generation(ctx context.Context) (int64, error) {
	raw, err := c.cache.Get(ctx, JobListGenerationKey)
	if err != nil || raw == nil {
		return 0, err
	}
	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse job list generation %q: %w", raw, err)
	}
	return gen, nil
}

// JobListPageKey renders the cache key of one list page.
func JobListPageKey(generation int64, opts model.JobListOptions) string {
	var status, app string
	if opts.Status != nil {
		status = string(*opts.Status)
	}
	if opts.AppName != nil {
		app = strings.TrimSpace(*opts.AppName)
	}
	return fmt.Sprintf("jobs:list:v%d:%d:%d:%s:%s", generation, opts.Limit, opts.Offset, status, app)
}
