// File: internal/doctor/handler.go
package doctor

import (
	"net/http"

	"clinic_backend/internal/common"
	"clinic_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler serves the doctor credentialing endpoints.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("doctor_handler")}
}

// RegisterUserRoutes mounts the routes available to any authenticated user.
func (h *Handler) RegisterUserRoutes(group *gin.RouterGroup) {
	group.POST("/applyDoctor", h.apply)
	group.GET("/approveddoctors", h.listApproved)
}

// RegisterDoctorRoutes mounts the routes reserved for approved doctors.
func (h *Handler) RegisterDoctorRoutes(group *gin.RouterGroup) {
	group.POST("/updateProfile", h.updateProfile)
	group.GET("/profile", h.ownProfile)
}

// RegisterAdminRoutes mounts the admin review routes.
func (h *Handler) RegisterAdminRoutes(group *gin.RouterGroup) {
	group.GET("/doctors", h.listAll)
	group.POST("/reviewDoctor", h.review)
}

func (h *Handler) apply(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(verrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload."))
		return
	}

	created, err := h.service.Apply(c.Request.Context(), principal, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusCreated, "Doctor application submitted successfully.", created)
}

func (h *Handler) listApproved(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	doctors, total, err := h.service.ListApproved(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Approved doctors fetched successfully.", doctors, common.NewPagination(total, page, pageSize))
}

func (h *Handler) ownProfile(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	profile, err := h.service.GetByUserID(c.Request.Context(), principal.ID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	resp := ToResponse(profile, true)
	common.RespondOK(c, "Doctor profile fetched successfully.", resp)
}

func (h *Handler) updateProfile(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(verrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload."))
		return
	}

	updated, err := h.service.UpdateOwnProfile(c.Request.Context(), principal, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Doctor profile updated successfully.", updated)
}

func (h *Handler) listAll(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	doctors, total, err := h.service.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Doctors fetched successfully.", doctors, common.NewPagination(total, page, pageSize))
}

func (h *Handler) review(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(verrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload."))
		return
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid doctor id."))
		return
	}
	decision, err := common.ParseDecision(req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	reviewed, err := h.service.Review(c.Request.Context(), principal, doctorID, decision)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Doctor application reviewed successfully.", reviewed)
}
