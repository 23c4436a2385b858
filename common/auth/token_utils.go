package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the subset of the access token the storefront relies on.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// TokenParser validates HMAC-signed access tokens issued by the auth backend.
type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Parse validates tokenStr and extracts its claims. The "typ" claim, when present,
// must be "access".
func (p *TokenParser) Parse(tokenStr string) (*Claims, error) {
	if len(p.secret) == 0 {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if typ, ok := mc["typ"].(string); ok && typ != "access" {
		return nil, fmt.Errorf("invalid token type")
	}

	claims := &Claims{}
	claims.UserID, _ = mc["sub"].(string)
	if claims.UserID == "" {
		claims.UserID, _ = mc["user_id"].(string)
	}
	claims.Email, _ = mc["email"].(string)
	claims.Role, _ = mc["role"].(string)
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}
