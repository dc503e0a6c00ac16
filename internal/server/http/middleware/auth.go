package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	pkgAuth "github.com/luisbfsousa/mect-sub001/internal/pkg/auth"
	"github.com/luisbfsousa/mect-sub001/internal/server/http/dto"
)

// IdentityContextKey is a gin context key for the authenticated caller.
const IdentityContextKey = "identity"

// Authenticator resolves a bearer token into a caller identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.Identity, error)
}

// AuthRequired ensures the request carries a valid identity token.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "missing bearer token"})
			return
		}

		id, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
			return
		}

		c.Set(IdentityContextKey, id)
		c.Next()
	}
}

// RequireRole rejects callers ranked below min.
func RequireRole(policy identity.Policy, min model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "missing identity"})
			return
		}
		if !policy.AtLeast(id.Role, min) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "forbidden"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by AuthRequired.
func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	val, ok := c.Get(IdentityContextKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := val.(identity.Identity)
	return id, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
