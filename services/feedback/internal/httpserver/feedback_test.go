package httpserver

import (
	"encoding/json"
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
	"github.com/Skotchmaster/storefront/pkg/httperr"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/feedback/internal/models"
	"github.com/Skotchmaster/storefront/services/feedback/internal/repo"
	"github.com/Skotchmaster/storefront/services/feedback/internal/service"
)

var secret = []byte("jwt")

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	db := dbtest.Open(t, &models.ProductFeedback{}, &models.FeedbackVote{}, &models.FeedbackComment{})
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler
	Register(e.Group(""), &FeedbackHTTP{Svc: &service.FeedbackService{Repo: &repo.GormRepo{DB: db}}}, &authmw.Middleware{JWTSecret: secret})
	return e
}

func token(t *testing.T, userID, name string) string {
	t.Helper()
	tok, err := tokens.SignAccess(secret, tokens.AccessClaims{
		Role: "user",
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return tok
}

func do(e *echo.Echo, method, path, tok, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) contracts.Feedback {
	t.Helper()
	var fb contracts.Feedback
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fb))
	return fb
}

func TestGetFeedback_Default(t *testing.T) {
	e := newServer(t)
	product := uuid.NewString()

	rec := do(e, http.MethodGet, "/feedback/"+product, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"productId":"`+product+`","likes":0,"dislikes":0,"votes":[],"comments":[]}`, rec.Body.String())
}

func TestGetFeedback_BadProductID(t *testing.T) {
	e := newServer(t)
	rec := do(e, http.MethodGet, "/feedback/nope", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostFeedback_Anonymous(t *testing.T) {
	e := newServer(t)
	rec := do(e, http.MethodPost, "/feedback/"+uuid.NewString(), "", `{"type":"vote","vote":"like"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"You must be logged in."}`, rec.Body.String())
}

func TestPostFeedback_VoteAndComment(t *testing.T) {
	e := newServer(t)
	product := uuid.NewString()
	userID := uuid.NewString()
	tok := token(t, userID, "Ann")

	rec := do(e, http.MethodPost, "/feedback/"+product, tok, `{"type":"vote","vote":"like"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fb := decode(t, rec)
	assert.Equal(t, 1, fb.Likes)
	assert.Equal(t, []contracts.Vote{{User: userID, Vote: contracts.VoteLike}}, fb.Votes)

	rec = do(e, http.MethodPost, "/feedback/"+product, tok, `{"type":"vote","vote":"like"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode(t, rec).Likes)

	rec = do(e, http.MethodPost, "/feedback/"+product, tok, `{"type":"vote","vote":"dislike"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	fb = decode(t, rec)
	assert.Equal(t, 0, fb.Likes)
	assert.Equal(t, 1, fb.Dislikes)

	rec = do(e, http.MethodPost, "/feedback/"+product, tok, `{"type":"comment","text":" Great "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	fb = decode(t, rec)
	require.Len(t, fb.Comments, 1)
	assert.Equal(t, "Great", fb.Comments[0].Text)
	assert.Equal(t, "Ann", fb.Comments[0].Name)
	assert.Nil(t, fb.Comments[0].Image)

	rec = do(e, http.MethodGet, "/feedback/"+product, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	fb = decode(t, rec)
	assert.Equal(t, 1, fb.Dislikes)
	assert.Len(t, fb.Comments, 1)
}

func TestPostFeedback_BadBodies(t *testing.T) {
	e := newServer(t)
	product := uuid.NewString()
	tok := token(t, uuid.NewString(), "Ann")

	for name, body := range map[string]string{
		"unknown type":  `{"type":"rating"}`,
		"invalid vote":  `{"type":"vote","vote":"meh"}`,
		"empty comment": `{"type":"comment","text":"   "}`,
		"not json":      `{`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/feedback/"+product, tok, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
