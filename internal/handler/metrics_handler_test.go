package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/tutor-sessions-api/internal/service"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestMetricsHandlerReady(t *testing.T) {
	healthy := NewMetricsHandler(nil, map[string]Pinger{"db": pingerFunc(func(context.Context) error { return nil })})
	c, w := newTestContext(http.MethodGet, "/ready", nil, nil)
	healthy.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	broken := NewMetricsHandler(nil, map[string]Pinger{"redis": pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") })})
	c, w = newTestContext(http.MethodGet, "/ready", nil, nil)
	broken.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordSessionCreated()
	h := NewMetricsHandler(metrics, nil)
	c, w := newTestContext(http.MethodGet, "/metrics", nil, nil)

	h.Prometheus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scheduling_sessions_created_total")
}
