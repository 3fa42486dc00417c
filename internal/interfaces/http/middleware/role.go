package middleware

import (
	"net/http"

	"github.com/leaseledger/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, requiredRoles []string)
}

// RequireRole creates middleware that requires one of the listed roles.
// The caller must hold at least one of them to proceed.
func RequireRole(roles ...string) gin.HandlerFunc {
	return RequireRoleWithConfig(RoleConfig{}, roles...)
}

// RequireRoleWithConfig creates role middleware with custom config
func RequireRoleWithConfig(cfg RoleConfig, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, roles, "No authentication claims found")
			return
		}

		if !claims.HasRole(roles...) {
			handleRoleDenied(c, cfg, roles, "Caller lacks required role")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Role check passed",
				zap.String("user_id", claims.UserID),
				zap.Strings("required_any", roles),
				zap.String("role", claims.Role),
			)
		}

		c.Next()
	}
}

// RequireAdmin creates middleware restricting the route to admins
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(auth.RoleAdmin)
}

// RequireStaff creates middleware restricting the route to back-office
// callers (admins and managers). Tenant tokens are rejected.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(auth.RoleAdmin, auth.RoleManager)
}

// handleRoleDenied handles role denied scenarios
func handleRoleDenied(c *gin.Context, cfg RoleConfig, requiredRoles []string, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredRoles)
		return
	}

	if cfg.Logger != nil {
		claims := GetJWTClaims(c)
		userID := ""
		role := ""
		if claims != nil {
			userID = claims.UserID
			role = claims.Role
		}

		cfg.Logger.Warn("Role denied",
			zap.String("reason", reason),
			zap.String("user_id", userID),
			zap.Strings("required_roles", requiredRoles),
			zap.String("role", role),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "Access denied: insufficient role",
		},
	})
}

// HasRole is a helper function to check a role in handlers
func HasRole(c *gin.Context, roles ...string) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	return claims.HasRole(roles...)
}

// IsAdmin reports whether the caller holds the admin role
func IsAdmin(c *gin.Context) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	return claims.IsAdmin()
}

// IsStaff reports whether the caller is back-office (admin or manager)
func IsStaff(c *gin.Context) bool {
	return HasRole(c, auth.RoleAdmin, auth.RoleManager)
}

// MustHaveRole aborts the request if the caller lacks all listed roles.
// Returns true if the caller holds one, false if aborted.
func MustHaveRole(c *gin.Context, roles ...string) bool {
	if !HasRole(c, roles...) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ERR_FORBIDDEN",
				"message": "Access denied: insufficient role",
			},
		})
		return false
	}
	return true
}

// CheckAccessFunc is a function type for custom access checks
type CheckAccessFunc func(claims *auth.Claims, c *gin.Context) bool

// RequireCustomAccess creates middleware with a custom access check.
// This allows logic that can't be expressed with a plain role list, such
// as tenants reading only their own submissions.
func RequireCustomAccess(checkFunc CheckAccessFunc) gin.HandlerFunc {
	return RequireCustomAccessWithConfig(checkFunc, RoleConfig{})
}

// RequireCustomAccessWithConfig creates custom access middleware with config
func RequireCustomAccessWithConfig(checkFunc CheckAccessFunc, cfg RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, []string{"custom"}, "No authentication claims found")
			return
		}

		if !checkFunc(claims, c) {
			handleRoleDenied(c, cfg, []string{"custom"}, "Custom access check failed")
			return
		}

		c.Next()
	}
}
