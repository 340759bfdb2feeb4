package auth

import (
	"errors"
	"net/http"
	"strings"

	"timebank/internal/logger"

	"github.com/gin-gonic/gin"
)

const identityKey = "auth.identity"

var (
	errMissingHeader   = errors.New("Authorization header required")
	errBadHeaderFormat = errors.New("Invalid authorization header format")
	errEmptyToken      = errors.New("Token is empty")
)

// AuthMiddleware rejects the request unless it carries a valid bearer access token
// for an active account. Role and email come from the stored account, not the token.
func AuthMiddleware(accessSecret string, accounts AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, c.GetHeader("Authorization"), accessSecret, accounts) {
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware sets the identity when a bearer token is present and
// lets anonymous requests through. A malformed or expired token is still rejected.
func OptionalAuthMiddleware(accessSecret string, accounts AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header != "" && !authenticate(c, header, accessSecret, accounts) {
			return
		}
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if id.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the caller set by one of the auth middlewares.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func GetUserID(c *gin.Context) (int64, bool) {
	id, ok := CurrentIdentity(c)
	return id.UserID, ok
}

// WithIdentity stores id on the request context the way the middlewares do.
func WithIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

func authenticate(c *gin.Context, header, secret string, accounts AccountResolver) bool {
	raw, err := bearerToken(header)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": describe(err)})
		return false
	}

	claims, err := ParseToken(raw, TokenAccess, secret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": describe(err)})
		return false
	}

	id, err := accounts.ResolveIdentity(c.Request.Context(), claims.UserID)
	switch {
	case errors.Is(err, ErrUnknownAccount):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
		return false
	case errors.Is(err, ErrAccountInactive):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
		return false
	case err != nil:
		logger.Error("resolve token subject", "user_id", claims.UserID, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return false
	}

	WithIdentity(c, id)
	return true
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingHeader
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || strings.TrimSpace(scheme) != "Bearer" {
		return "", errBadHeaderFormat
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errEmptyToken
	}
	return token, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, errMissingHeader), errors.Is(err, errBadHeaderFormat), errors.Is(err, errEmptyToken):
		return err.Error()
	case errors.Is(err, ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, ErrInvalidTokenType):
		return "Access token required"
	default:
		return "Invalid or malformed token"
	}
}
