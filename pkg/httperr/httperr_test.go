package httperr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"http error", echo.NewHTTPError(http.StatusBadRequest, "bad period"), 400, `{"error":"bad period"}`},
		{"plain error", errors.New("db down"), 500, `{"error":"Internal Server Error"}`},
		{"not found", echo.ErrNotFound, 404, `{"error":"Not Found"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			Handler(tc.err, c)

			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}
