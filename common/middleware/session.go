package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionKey    = "session_id"
	SessionHeader = "X-Session-ID"
	SessionCookie = "cart_session"
)

// Session resolves the browser session that owns the cart. The X-Session-ID header wins
// over the cookie; when neither is present a new session is minted and set as a cookie.
func Session(cookieMaxAge int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(SessionHeader))
		if sid == "" {
			if v, err := c.Cookie(SessionCookie); err == nil {
				sid = strings.TrimSpace(v)
			}
		}
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sid, cookieMaxAge, "/", "", secure, true)
		}
		c.Set(SessionKey, sid)
		c.Header(SessionHeader, sid)
		c.Next()
	}
}

func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
