package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/db/dbtest"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/httperr"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/auth/internal/models"
	"github.com/Skotchmaster/storefront/services/auth/internal/repo"
	"github.com/Skotchmaster/storefront/services/auth/internal/service"
)

type testEnv struct {
	e *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t, &models.User{}, &models.RefreshToken{})
	svc := &service.AuthService{
		Repo:          &repo.GormRepo{DB: db},
		Hasher:        hash.Hasher{Cost: bcrypt.MinCost},
		JWTSecret:     []byte("jwt"),
		RefreshSecret: []byte("refresh"),
	}
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler
	Register(e.Group(""), &AuthHTTP{Svc: svc}, &authmw.Middleware{JWTSecret: svc.JWTSecret, Refresher: svc})
	return &testEnv{e: e}
}

func (env *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestRegisterUser_AndCount(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/user-register", `{"name":"Ann","email":"ann@shop.io","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp contracts.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user", resp.User.Role)

	rec = env.do(http.MethodPost, "/auth/user-register", `{"name":"Ann","email":"ann@shop.io","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")

	rec = env.do(http.MethodGet, "/auth/user-register", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
}

func TestRegisterUser_InvalidBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/auth/user-register", `{"name":"","email":"x","password":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_SetsCookies(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated,
		env.do(http.MethodPost, "/auth/user-register", `{"name":"Ann","email":"ann@shop.io","password":"secret1"}`).Code)

	rec := env.do(http.MethodPost, "/auth/login", `{"email":"ann@shop.io","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", `{"email":"ann@shop.io","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp contracts.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user", resp.Role)
	assert.NotEmpty(t, resp.AccessToken)

	access := cookie(rec, tokens.AccessCookie)
	refresh := cookie(rec, tokens.RefreshCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	rec = env.do(http.MethodPost, "/auth/refresh", "", refresh)
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := cookie(rec, tokens.RefreshCookie)
	require.NotNil(t, rotated)
	assert.NotEqual(t, refresh.Value, rotated.Value)

	rec = env.do(http.MethodPost, "/auth/logout", "", rotated)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodPost, "/auth/refresh", "", rotated)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAdmin_FirstThenLocked(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", `{"name":"Root","email":"root@shop.io","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/auth/register", `{"name":"Eve","email":"eve@shop.io","password":"secret1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", `{"email":"root@shop.io","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	access := cookie(rec, tokens.AccessCookie)

	rec = env.do(http.MethodPost, "/auth/register", `{"name":"Bob","email":"bob@shop.io","password":"secret1"}`, access)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
