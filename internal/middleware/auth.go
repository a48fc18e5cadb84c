// File: internal/middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"clinic_backend/internal/common"
	"clinic_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// PrincipalKey is the context key for the authenticated principal
	PrincipalKey = "principal"
	// ClaimsKey stores the validated token claims
	ClaimsKey = "claims"
)

// AuthMiddleware creates a Gin middleware that turns a bearer token into an
// authenticated principal. The token only proves who the caller is: it is
// validated, checked against the blocklist, and its subject re-resolved
// against the identity store so tokens for vanished users die immediately.
// Authorization decisions stay inside the workflow operations.
func AuthMiddleware(tokenService shared.TokenService, principals shared.PrincipalSource, blocklist shared.TokenBlocklist, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
			logger.Debug("Authorization header format invalid", zap.String("header", authHeader))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		claims, err := tokenService.ValidateToken(parts[1])
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired token."))
			return
		}

		if blocklist != nil && claims.ID != "" {
			blocked, err := blocklist.IsBlocklisted(c.Request.Context(), claims.ID)
			if err == nil && blocked {
				logger.Debug("Token is blocklisted", zap.String("jti", claims.ID))
				common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Token has been revoked."))
				return
			}
		}

		principal, err := principals.PrincipalByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				logger.Warn("Token subject no longer exists", zap.String("userID", claims.UserID.String()))
				common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Account no longer exists."))
				return
			}
			logger.Error("Failed to resolve principal", zap.Error(err), zap.String("userID", claims.UserID.String()))
			common.RespondWithError(c, common.ErrInternalServer)
			return
		}

		c.Set(PrincipalKey, principal)
		c.Set(ClaimsKey, claims)

		logger.Debug("User authenticated successfully",
			zap.String("userID", principal.ID.String()),
			zap.String("role", principal.Role),
			zap.Bool("isDoctor", principal.IsDoctor),
		)

		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from the Gin context.
// It fails when the auth middleware did not run on this route.
func GetPrincipal(c *gin.Context) (*shared.Principal, error) {
	val, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, common.ErrUnauthorized.WithDetails("Authentication required.")
	}
	principal, ok := val.(*shared.Principal)
	if !ok || principal == nil {
		return nil, common.ErrUnauthorized.WithDetails("Authentication required.")
	}
	return principal, nil
}

// GetClaims retrieves the validated token claims from the Gin context.
func GetClaims(c *gin.Context) (*shared.Claims, error) {
	val, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, common.ErrUnauthorized.WithDetails("Authentication required.")
	}
	claims, ok := val.(*shared.Claims)
	if !ok || claims == nil {
		return nil, common.ErrUnauthorized.WithDetails("Authentication required.")
	}
	return claims, nil
}

// RoleAuthMiddleware checks that the authenticated principal holds one of
// the required roles. Workflow operations re-check independently; this
// gate just keeps obviously wrong traffic out of a route group.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := GetPrincipal(c)
		if err != nil {
			common.RespondWithError(c, err)
			return
		}

		for _, role := range allowedRoles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}

// DoctorAuthMiddleware admits only principals whose doctor flag is set.
func DoctorAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := GetPrincipal(c)
		if err != nil || !principal.IsDoctor {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("This resource is available to approved doctors only."))
			return
		}
		c.Next()
	}
}
