// File: internal/notification/handler.go
package notification

import (
	"clinic_backend/internal/common"
	"clinic_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the notification inbox endpoints.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("notification_handler")}
}

// RegisterRoutes mounts the inbox routes on an authenticated group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/notifications", h.inbox)
	group.POST("/notifications/markRead", h.markAllRead)
	group.POST("/notifications/clear", h.clearAll)
}

func (h *Handler) inbox(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	inbox, err := h.service.Inbox(c.Request.Context(), principal.ID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notifications fetched successfully.", inbox)
}

func (h *Handler) markAllRead(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if _, err := h.service.MarkAllRead(c.Request.Context(), principal.ID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read.", nil)
}

func (h *Handler) clearAll(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if _, err := h.service.ClearAll(c.Request.Context(), principal.ID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications cleared.", nil)
}
