package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/weekly-attendance-api/pkg/errors"
)

type cacheRepoStub struct {
	store      map[string][]byte
	getErr     error
	lastTTL    time.Duration
	lastDelete string
}

func (r *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	if r.getErr != nil {
		return r.getErr
	}
	raw, ok := r.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.store[key] = raw
	r.lastTTL = ttl
	return nil
}

func (r *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	r.lastDelete = pattern
	r.store = map[string][]byte{}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := &cacheRepoStub{store: map[string][]byte{}}
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, 0, nil, true)
	ctx := context.Background()

	var dest []string
	assert.False(t, svc.Get(ctx, "k", &dest))

	svc.Set(ctx, "k", []string{"a"}, 0)
	assert.Equal(t, 2*time.Minute, repo.lastTTL)
	require.True(t, svc.Get(ctx, "k", &dest))
	assert.Equal(t, []string{"a"}, dest)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))

	svc.Invalidate(ctx, "submissions:overview:*")
	assert.Equal(t, "submissions:overview:*", repo.lastDelete)
	assert.False(t, svc.Get(ctx, "k", &dest))
}

func TestCacheServiceBackendErrorIsMiss(t *testing.T) {
	repo := &cacheRepoStub{store: map[string][]byte{}, getErr: errors.New("connection reset")}
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	var dest []string
	assert.False(t, svc.Get(context.Background(), "k", &dest))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &cacheRepoStub{store: map[string][]byte{}}
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	svc.Set(context.Background(), "k", "v", 0)
	assert.Empty(t, repo.store)
	assert.False(t, svc.Enabled())

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}
