package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"communerag/internal/pkg/jwtutil"
	"communerag/internal/transport/http/response"
)

const (
	ContextClientIDKey   = "client_id"
	ContextClientNameKey = "client_name"
)

// AuthJWT rejects requests without a valid bearer token and stores the
// client identity on the request context for downstream handlers.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextClientIDKey, claims.ClientID)
		c.Set(ContextClientNameKey, claims.ClientName)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	response.Error(c, 401, response.CodeUnauthorized, message)
	c.Abort()
}
