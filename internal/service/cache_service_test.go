package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type brokenCacheRepo struct{}

func (brokenCacheRepo) Get(context.Context, string, interface{}) error { return errors.New("conn refused") }
func (brokenCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("conn refused")
}
func (brokenCacheRepo) DeleteByPattern(context.Context, string) error { return errors.New("conn refused") }

func TestCacheServiceIsBestEffort(t *testing.T) {
	svc := NewCacheService(brokenCacheRepo{}, NewMetricsService(), 0, zap.NewNop(), true)
	var dest []string

	assert.True(t, svc.Enabled())
	assert.False(t, svc.Get(context.Background(), "k", &dest))
	assert.NotPanics(t, func() {
		svc.Set(context.Background(), "k", []string{"v"}, 0)
		svc.Invalidate(context.Background(), "k*")
	})
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	svc.Set(context.Background(), "k", "v", 0)
	assert.Empty(t, repo.items)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.False(t, nilSvc.Get(context.Background(), "k", new(string)))
}
