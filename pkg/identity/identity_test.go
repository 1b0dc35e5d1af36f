package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntoFrom(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := From(c)
	assert.False(t, ok)

	Into(c, Identity{UserID: "u-1", Role: RoleAdmin})
	id, ok := From(c)
	require.True(t, ok)
	assert.True(t, id.IsAdmin())
	assert.Equal(t, "u-1", c.Get("user_id"))
	assert.Equal(t, RoleAdmin, c.Get("role"))
}
