package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/luxe-storefront/common/auth"
)

const (
	UserKey  = "userID"
	EmailKey = "email"
	RoleKey  = "role"
)

// OptionalAuth attaches the caller's identity when a valid bearer token is sent and
// lets anonymous shoppers through otherwise.
func OptionalAuth(parser *auth.TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := bearerClaims(c, parser); err == nil && claims != nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(parser *auth.TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, parser)
		if err != nil || claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) string {
	return c.GetString(UserKey)
}

func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}

func bearerClaims(c *gin.Context, parser *auth.TokenParser) (*auth.Claims, error) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, nil
	}
	return parser.Parse(strings.TrimSpace(token))
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(UserKey, claims.UserID)
	c.Set(EmailKey, claims.Email)
	c.Set(RoleKey, claims.Role)
}
