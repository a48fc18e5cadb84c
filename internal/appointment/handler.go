// File: internal/appointment/handler.go
package appointment

import (
	"clinic_backend/internal/common"
	"clinic_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler serves the appointment endpoints for patients, doctors and admins.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("appointment_handler")}
}

// RegisterUserRoutes mounts the patient-facing routes.
func (h *Handler) RegisterUserRoutes(group *gin.RouterGroup) {
	group.POST("/bookAppointment", h.book)
	group.GET("/appointments", h.listForPatient)
}

// RegisterDoctorRoutes mounts the doctor-facing routes.
func (h *Handler) RegisterDoctorRoutes(group *gin.RouterGroup) {
	group.GET("/appointments", h.listForDoctor)
	group.POST("/reviewAppointment", h.review)
	group.GET("/downloadDocument", h.downloadDocument)
}

// RegisterAdminRoutes mounts the admin dashboard routes.
func (h *Handler) RegisterAdminRoutes(group *gin.RouterGroup) {
	group.GET("/appointments", h.listAll)
}

// book accepts a multipart form: doctorId, date and an optional
// "document" file.
func (h *Handler) book(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	var req BookRequest
	if err := c.ShouldBind(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(verrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload."))
		return
	}

	// The document is optional; only a present file is forwarded.
	document, err := c.FormFile("document")
	if err != nil {
		document = nil
	}

	created, err := h.service.Book(c.Request.Context(), c, principal, req, document)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Appointment booked successfully.", created)
}

func (h *Handler) listForPatient(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	page, pageSize := common.GetPaginationParams(c)
	appointments, total, err := h.service.ListForPatient(c.Request.Context(), principal, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Appointments fetched successfully.", appointments, common.NewPagination(total, page, pageSize))
}

func (h *Handler) listForDoctor(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	page, pageSize := common.GetPaginationParams(c)
	appointments, total, err := h.service.ListForDoctor(c.Request.Context(), principal, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Appointments fetched successfully.", appointments, common.NewPagination(total, page, pageSize))
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

	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid appointment id."))
		return
	}
	decision, err := common.ParseDecision(req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	reviewed, err := h.service.Review(c.Request.Context(), principal, appointmentID, decision)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Appointment reviewed successfully.", reviewed)
}

func (h *Handler) downloadDocument(c *gin.Context) {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	rawID := c.Query("appointId")
	appointmentID, err := uuid.Parse(rawID)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid or missing appointId query parameter."))
		return
	}

	diskPath, downloadName, err := h.service.ResolveDocument(c.Request.Context(), principal, appointmentID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.FileAttachment(diskPath, downloadName)
}

func (h *Handler) listAll(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	appointments, total, err := h.service.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Appointments fetched successfully.", appointments, common.NewPagination(total, page, pageSize))
}
