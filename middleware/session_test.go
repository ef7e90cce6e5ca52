// file: middleware/session_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupSessionTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PUT("/protected", SessionRequired, func(c *gin.Context) {
		c.String(http.StatusOK, "hello "+SessionID(c))
	})
	router.GET("/open", func(c *gin.Context) {
		c.String(http.StatusOK, "id="+SessionID(c))
	})
	return router
}

func TestSessionRequired_NoCookie(t *testing.T) {
	router := setupSessionTestRouter()

	req, _ := http.NewRequest(http.MethodPut, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Could not determine session id"}`, w.Body.String())
}

func TestSessionRequired_WithCookie(t *testing.T) {
	router := setupSessionTestRouter()

	req, _ := http.NewRequest(http.MethodPut, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello abc", w.Body.String())
}

func TestSessionID_Optional(t *testing.T) {
	router := setupSessionTestRouter()

	req, _ := http.NewRequest(http.MethodGet, "/open", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "id=", w.Body.String())

	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "xyz"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "id=xyz", w.Body.String())
}
