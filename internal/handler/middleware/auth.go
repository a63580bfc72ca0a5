package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"rentpay/internal/domain/actor"
	"rentpay/internal/pkg/cookie"
	"rentpay/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey   = "user_id"
	ctxUserRoleKey = "user_role"
	ctxInternalKey = "internal_service"

	internalKeyHeader = "X-Internal-Service-Key"
)

type AuthMiddleware struct {
	jwtService         *jwt.Service
	internalServiceKey string
}

func NewAuthMiddleware(jwtService *jwt.Service, internalServiceKey string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:         jwtService,
		internalServiceKey: internalServiceKey,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		role, err := actor.ParseRole(claims.Role)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxUserRoleKey, role)
		c.Set("jwt_claims", map[string]any{
			"user_id": claims.UserID.String(),
			"role":    string(role),
		})
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRoleAtLeast(minRole actor.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			// Unexpected error: should be used after RequireAuth()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if !role.AtLeast(minRole) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireInternalOrAdmin admits the external job scheduler via the internal
// service key, or an admin bearing a normal token. Key comparison is
// constant time.
func (m *AuthMiddleware) RequireInternalOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(internalKeyHeader); key != "" {
			if m.internalServiceKey != "" &&
				subtle.ConstantTimeCompare([]byte(key), []byte(m.internalServiceKey)) == 1 {
				c.Set(ctxInternalKey, true)
				c.Next()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid internal service key",
			})
			c.Abort()
			return
		}

		m.RequireAuth()(c)
		if c.IsAborted() {
			return
		}
		m.RequireRoleAtLeast(actor.RoleAdmin)(c)
	}
}

func extractToken(c *gin.Context) string {
	token := cookie.GetAccessToken(c)
	if token == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}
	}
	return token
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}

func GetUserRole(c *gin.Context) (actor.Role, bool) {
	userRole, exists := c.Get(ctxUserRoleKey)
	if !exists {
		return "", false
	}

	role, ok := userRole.(actor.Role)
	return role, ok
}

// GetActor assembles the caller identity set by RequireAuth.
func GetActor(c *gin.Context) (actor.Actor, bool) {
	id, okID := GetUserID(c)
	role, okRole := GetUserRole(c)
	if !okID || !okRole {
		return actor.Actor{}, false
	}
	return actor.Actor{ID: id, Role: role}, true
}

// IsInternalService reports whether the request authenticated with the
// internal service key rather than a user token.
func IsInternalService(c *gin.Context) bool {
	v, exists := c.Get(ctxInternalKey)
	if !exists {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}
