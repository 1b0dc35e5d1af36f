package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/db/dbtest"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/httperr"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/service"
)

var secret = []byte("catalog-secret")

func bearer(t *testing.T, role string) string {
	t.Helper()
	s, err := tokens.SignAccess(secret, tokens.AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-" + role,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	require.NoError(t, err)
	return "Bearer " + s
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db := dbtest.Open(t, &models.Product{}, &models.Banner{})
	svc := &service.CatalogService{Repo: &repo.GormRepo{DB: db}, Publisher: &events.Recorder{}}
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler
	Register(e.Group(""), &CatalogHTTP{Svc: svc}, &authmw.Middleware{JWTSecret: secret})
	return e
}

func do(e *echo.Echo, method, path, body, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const productBody = `{"title":"Silk shawl","price":500,"image":"https://img/s.png","description":"Hand made","category":"Fancy"}`

func TestCreateProduct_RequiresAdmin(t *testing.T) {
	e := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/products", productBody, "").Code)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodPost, "/products", productBody, bearer(t, "user")).Code)

	rec := do(e, http.MethodPost, "/products", productBody, bearer(t, "admin"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var env contracts.ProductEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Silk shawl", env.Product.Title)

	rec = do(e, http.MethodGet, "/products/"+env.Product.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/products?category=Fancy", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestCreateProduct_MissingFields(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodPost, "/products", `{"title":"x"}`, bearer(t, "admin"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"validation: All fields are required"}`, rec.Body.String())
}

func TestGetProduct_NotFoundAndBadID(t *testing.T) {
	e := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/products/7b0c5f2e-8a43-4b8e-9f55-1df0c2a6a111", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/products/42", "", "").Code)
}

func TestSearch_DatabaseFallback(t *testing.T) {
	e := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/products", productBody, bearer(t, "admin")).Code)

	rec := do(e, http.MethodGet, "/products/search?q=shawl", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp contracts.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.Total)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/products/search", "", "").Code)
}

func TestBanners_Handlers(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodPost, "/banners", `{"title":"Sale"}`, bearer(t, "admin"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/banners", `{"title":"Sale","link":"/shop","image":"https://img/b.png"}`, bearer(t, "admin"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodGet, "/banners", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []contracts.Banner
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}
