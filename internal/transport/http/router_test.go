package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/db/dbtest"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type pingModule struct{}

func (pingModule) Register(g *echo.Group, mw *authmw.Middleware) {
	g.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	g.GET("/private", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, mw.RequireAuth)
	g.GET("/boom", func(c echo.Context) error { panic("boom") })
}

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	reg := prometheus.NewRegistry()
	e := echo.New()
	Register(e, &Deps{
		DB:       dbtest.Open(t),
		Gatherer: reg,
		Metrics:  metrics.NewServerMetrics(reg, "api"),
		Auth:     &authmw.Middleware{JWTSecret: []byte("jwt")},
		Modules:  []Module{pingModule{}},
	})
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRegister_Health(t *testing.T) {
	e := newServer(t)
	assert.Equal(t, http.StatusOK, get(e, "/health/live").Code)
	assert.Equal(t, http.StatusOK, get(e, "/health/ready").Code)
}

func TestRegister_ModulesAndErrors(t *testing.T) {
	e := newServer(t)

	rec := get(e, "/ping/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = get(e, "/private")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"You must be logged in."}`, rec.Body.String())

	rec = get(e, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRegister_Metrics(t *testing.T) {
	e := newServer(t)
	get(e, "/ping")

	rec := get(e, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_api_http_requests_total{handler="/ping",method="GET",status="200"} 1`)
}
