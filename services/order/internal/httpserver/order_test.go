package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/db/dbtest"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/httperr"
	"github.com/Skotchmaster/storefront/pkg/identity"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/order/internal/models"
	"github.com/Skotchmaster/storefront/services/order/internal/repo"
	"github.com/Skotchmaster/storefront/services/order/internal/service"
)

var secret = []byte("jwt")

type testEnv struct {
	e       *echo.Echo
	product uuid.UUID
	shopper string
	admin   string
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := tokens.SignAccess(secret, tokens.AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return tok
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t, &models.Order{}, &models.OrderLine{}, &models.ProductRef{})
	product := uuid.New()
	require.NoError(t, db.Create(&models.ProductRef{ID: product, Title: "Shawl", Price: 2500, Category: "Shawls"}).Error)

	svc := &service.OrderService{
		Repo:          &repo.GormRepo{DB: db},
		AddressPolicy: service.AddressFull,
		Publisher:     &events.Recorder{},
	}
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler
	Register(e.Group(""), &OrderHTTP{Svc: svc}, &authmw.Middleware{JWTSecret: secret})

	return &testEnv{
		e:       e,
		product: product,
		shopper: bearer(t, uuid.NewString(), identity.RoleUser),
		admin:   bearer(t, uuid.NewString(), identity.RoleAdmin),
	}
}

func (env *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func subject(t *testing.T, token string) string {
	t.Helper()
	claims, err := tokens.ParseAccess(token, secret)
	require.NoError(t, err)
	return claims.Subject
}

func (env *testEnv) orderBody(userID string) string {
	return fmt.Sprintf(`{
		"userId": %q,
		"products": [{"product": %q, "quantity": 3}],
		"totalPrice": 7500,
		"address": {"street":"1 Mall Rd","city":"Lahore","state":"Punjab","zipCode":"54000","country":"PK"}
	}`, userID, env.product.String())
}

func TestOrders_RequireLogin(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"You must be logged in."}`, rec.Body.String())
}

func TestCreateAndListOrders(t *testing.T) {
	env := newTestEnv(t)
	userID := subject(t, env.shopper)

	rec := env.do(http.MethodPost, "/orders", env.shopper, env.orderBody(userID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created contracts.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, contracts.StatusPending, created.Status)
	assert.Equal(t, 7500.0, created.TotalPrice)
	require.Len(t, created.Products, 1)
	assert.Equal(t, 3, created.Products[0].Quantity)
	require.NotNil(t, created.Products[0].Product)
	assert.Equal(t, "Shawl", created.Products[0].Product.Title)

	rec = env.do(http.MethodGet, "/orders", env.shopper, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine contracts.UserOrdersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine.Orders, 1)
	assert.Equal(t, created.ID, mine.Orders[0].ID)

	rec = env.do(http.MethodGet, "/orders", env.admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all contracts.AdminOrdersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, 1, all.TotalOrders)
	assert.Equal(t, 7500.0, all.TotalSales)
}

func TestCreateOrder_ForAnotherUserForbidden(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/orders", env.shopper, env.orderBody(uuid.NewString()))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateOrder_EmptyProducts(t *testing.T) {
	env := newTestEnv(t)
	body := fmt.Sprintf(`{"userId":%q,"products":[],"totalPrice":0}`, subject(t, env.shopper))
	rec := env.do(http.MethodPost, "/orders", env.shopper, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrders_UnknownPeriod(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/orders?period=decade", env.admin, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/orders", env.shopper, env.orderBody(subject(t, env.shopper)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created contracts.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	patch := fmt.Sprintf(`{"orderId":%q,"status":"shipped"}`, created.ID)

	rec = env.do(http.MethodPatch, "/orders", env.shopper, patch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPatch, "/orders", env.admin, patch)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated contracts.OrderEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, contracts.StatusShipped, updated.Order.Status)

	rec = env.do(http.MethodPatch, "/orders", env.admin, `{"orderId":"`+created.ID+`","status":"lost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPatch, "/orders", env.admin, `{"orderId":"`+uuid.NewString()+`","status":"cancelled"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, rec.Body.String())
}
