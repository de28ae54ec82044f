package middleware

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/documents/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Delete("/documents/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Post("/bulk/match", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusForbidden, "forbidden")
	})
	app.Post("/bulk/upload", func(c *fiber.Ctx) error {
		return fmt.Errorf("commit: %w", fiber.ErrRequestEntityTooLarge)
	})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	return app, m, reg
}

func TestPrometheusMiddleware(t *testing.T) {
	app, m, _ := newPromApp(t)

	tests := []struct {
		method, target, route, status string
	}{
		{"GET", "/documents/3f0c", "/documents/:id", "200"},
		{"DELETE", "/documents/3f0c", "/documents/:id", "204"},
		{"POST", "/bulk/match", "/bulk/match", "403"},
		{"POST", "/bulk/upload", "/bulk/upload", "413"},
		{"GET", "/boom", "/boom", "500"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			_, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)

			got := testutil.ToFloat64(m.requestCount.WithLabelValues(tt.method, tt.route, tt.status))
			assert.Equal(t, float64(1), got)
		})
	}

	assert.Equal(t, 5, testutil.CollectAndCount(m.requestDuration))
}

func TestPrometheusMiddleware_RoutePatternLabel(t *testing.T) {
	app, m, _ := newPromApp(t)

	for _, id := range []string{"a", "b", "c"} {
		app.Test(httptest.NewRequest("GET", "/documents/"+id, nil))
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/documents/:id", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestCount))
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	app, _, reg := newPromApp(t)

	app.Test(httptest.NewRequest("GET", "/metrics", nil))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		assert.Empty(t, mf.GetMetric(), "scrape recorded in %s", mf.GetName())
	}
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
