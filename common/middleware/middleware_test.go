package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/yashrajoria/luxe-storefront/common/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"session": middleware.GetSessionID(c)})
	})
	return r
}

func TestSession_HeaderWinsOverCookie(t *testing.T) {
	r := newRouter(middleware.Session(3600, false))
	sid := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.SessionHeader, sid)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: uuid.NewString()})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sid, w.Header().Get(middleware.SessionHeader))
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestSession_CookieIsUsed(t *testing.T) {
	r := newRouter(middleware.Session(3600, false))
	sid := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: sid})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, sid, w.Header().Get(middleware.SessionHeader))
}

func TestSession_MintsWhenMissingOrInvalid(t *testing.T) {
	r := newRouter(middleware.Session(3600, false))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.SessionHeader, "not-a-uuid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	sid := w.Header().Get(middleware.SessionHeader)
	_, err := uuid.Parse(sid)
	require.NoError(t, err)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookie+"="+sid)
}

func TestCORSMiddleware(t *testing.T) {
	r := newRouter(middleware.CORSMiddleware("https://shop.example.com/, https://admin.example.com"))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("rejected origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://admin.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := middleware.NewRateLimiter(rate.Every(time.Hour), 1, time.Minute)
	r := newRouter(middleware.RateLimitMiddleware(rl))

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestAdminOnly(t *testing.T) {
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set(middleware.RoleKey, c.Query("role"))
		c.Next()
	}, middleware.AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?role=customer", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?role=admin", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
