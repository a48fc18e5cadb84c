// File: internal/auth/handler.go
package auth

import (
	"net/http"

	"clinic_backend/internal/common"
	"clinic_backend/internal/middleware"
	"clinic_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the session endpoints: current-user echo and logout.
type Handler struct {
	blocklist shared.TokenBlocklist
	logger    *zap.Logger
}

func NewHandler(blocklist shared.TokenBlocklist, logger *zap.Logger) *Handler {
	return &Handler{blocklist: blocklist, logger: logger.Named("auth_handler")}
}

// RegisterRoutes mounts the authenticated session routes on the given group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/auth", h.currentUser)
	group.POST("/logout", h.logout)
}

// currentUser returns the authenticated principal, looked up fresh on every
// request so a deleted account cannot keep using an old token.
func (h *Handler) currentUser(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User authenticated.", principal)
}

// logout revokes the presented token by blocklisting its JTI.
func (h *Handler) logout(c *gin.Context) {
	claims, err := middleware.GetClaims(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Token cannot be revoked."))
		return
	}
	if err := h.blocklist.AddToBlocklist(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		h.logger.Error("Failed to blocklist token", zap.Error(err), zap.String("jti", claims.ID))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Logout failed."))
		return
	}
	common.RespondSuccess(c, http.StatusOK, "Logged out successfully.", nil)
}
