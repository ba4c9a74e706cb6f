package handlers

import (
	"errors"
	"net/http"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"
	"fleetdesk/internal/services"
	"fleetdesk/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CompanyHandler struct {
	companyRepo      interfaces.CompanyRepository
	notificationRepo interfaces.NotificationRepository
	fleetService     services.FleetService
}

func NewCompanyHandler(
	companyRepo interfaces.CompanyRepository,
	notificationRepo interfaces.NotificationRepository,
	fleetService services.FleetService,
) *CompanyHandler {
	return &CompanyHandler{
		companyRepo:      companyRepo,
		notificationRepo: notificationRepo,
		fleetService:     fleetService,
	}
}

// CreateCompany registers a new transport company pending review
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var company models.Company
	if err := c.ShouldBindJSON(&company); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.companyRepo.Create(c.Request.Context(), &company); err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "COMPANY_CREATE_FAILED", "Failed to create company: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Company created successfully", company)
}

// GetCompany retrieves company details
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	companyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid company ID")
		return
	}

	company, err := h.companyRepo.GetByID(c.Request.Context(), companyID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Company")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "COMPANY_FETCH_FAILED", "Failed to get company: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Company retrieved successfully", company)
}

// ApproveCompany marks a pending company as approved
func (h *CompanyHandler) ApproveCompany(c *gin.Context) {
	companyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid company ID")
		return
	}

	if err := h.fleetService.ApproveCompany(c.Request.Context(), companyID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Company")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "COMPANY_APPROVE_FAILED", "Failed to approve company: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Company approved successfully", nil)
}

// RejectCompany rejects a pending company with a reason
func (h *CompanyHandler) RejectCompany(c *gin.Context) {
	companyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid company ID")
		return
	}

	var request struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.fleetService.RejectCompany(c.Request.Context(), companyID, request.Reason); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Company")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "COMPANY_REJECT_FAILED", "Failed to reject company: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Company rejected successfully", nil)
}

// GetCompanyNotifications lists the most recent compliance notifications
func (h *CompanyHandler) GetCompanyNotifications(c *gin.Context) {
	companyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid company ID")
		return
	}

	limit := utils.GetLimitParam(c, 50)

	notifications, err := h.notificationRepo.GetByCompany(c.Request.Context(), companyID, limit)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "NOTIFICATIONS_FETCH_FAILED", "Failed to get notifications: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Notifications retrieved successfully", notifications)
}
