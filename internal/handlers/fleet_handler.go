package handlers

import (
	"errors"
	"net/http"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"
	"fleetdesk/internal/services"
	"fleetdesk/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FleetHandler struct {
	fleetService services.FleetService
	driverRepo   interfaces.DriverRepository
	vehicleRepo  interfaces.VehicleRepository
}

func NewFleetHandler(
	fleetService services.FleetService,
	driverRepo interfaces.DriverRepository,
	vehicleRepo interfaces.VehicleRepository,
) *FleetHandler {
	return &FleetHandler{
		fleetService: fleetService,
		driverRepo:   driverRepo,
		vehicleRepo:  vehicleRepo,
	}
}

type renewDocumentRequest struct {
	URL        string    `json:"url" binding:"required"`
	ExpiryDate time.Time `json:"expiry_date" binding:"required"`
}

// CreateDriver adds a driver after the subscription entitlement check
func (h *FleetHandler) CreateDriver(c *gin.Context) {
	var driver models.Driver
	if err := c.ShouldBindJSON(&driver); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	decision, err := h.fleetService.CreateDriver(c.Request.Context(), &driver)
	if err != nil {
		if errors.Is(err, services.ErrEntitlementDenied) {
			respondEntitlementDenied(c, decision)
			return
		}
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Company")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "DRIVER_CREATE_FAILED", "Failed to create driver: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Driver created successfully", driver)
}

// GetDriver retrieves driver details
func (h *FleetHandler) GetDriver(c *gin.Context) {
	driverID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid driver ID")
		return
	}

	driver, err := h.driverRepo.GetByID(c.Request.Context(), driverID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Driver")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "DRIVER_FETCH_FAILED", "Failed to get driver: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Driver retrieved successfully", driver)
}

// DeleteDriver soft-deletes a driver
func (h *FleetHandler) DeleteDriver(c *gin.Context) {
	driverID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid driver ID")
		return
	}

	if err := h.driverRepo.Delete(c.Request.Context(), driverID); err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "DRIVER_DELETE_FAILED", "Failed to delete driver: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Driver deleted successfully", nil)
}

// CreateVehicle adds a vehicle after the subscription entitlement check
func (h *FleetHandler) CreateVehicle(c *gin.Context) {
	var vehicle models.Vehicle
	if err := c.ShouldBindJSON(&vehicle); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	decision, err := h.fleetService.CreateVehicle(c.Request.Context(), &vehicle)
	if err != nil {
		if errors.Is(err, services.ErrEntitlementDenied) {
			respondEntitlementDenied(c, decision)
			return
		}
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Company")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "VEHICLE_CREATE_FAILED", "Failed to create vehicle: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Vehicle created successfully", vehicle)
}

// GetVehicle retrieves vehicle details
func (h *FleetHandler) GetVehicle(c *gin.Context) {
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	vehicle, err := h.vehicleRepo.GetByID(c.Request.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Vehicle")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "VEHICLE_FETCH_FAILED", "Failed to get vehicle: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Vehicle retrieved successfully", vehicle)
}

// DeleteVehicle soft-deletes a vehicle
func (h *FleetHandler) DeleteVehicle(c *gin.Context) {
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	if err := h.vehicleRepo.Delete(c.Request.Context(), vehicleID); err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "VEHICLE_DELETE_FAILED", "Failed to delete vehicle: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Vehicle deleted successfully", nil)
}

// AssignDriver assigns an approved driver to a vehicle
func (h *FleetHandler) AssignDriver(c *gin.Context) {
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	var request struct {
		DriverID string `json:"driver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	driverID, err := primitive.ObjectIDFromHex(request.DriverID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid driver ID")
		return
	}

	if err := h.fleetService.AssignDriver(c.Request.Context(), vehicleID, driverID); err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			utils.NotFoundResponse(c, "Driver or vehicle")
		case errors.Is(err, services.ErrCompanyMismatch),
			errors.Is(err, services.ErrDriverNotAssignable):
			utils.BadRequestResponse(c, err.Error())
		case errors.Is(err, services.ErrDriverAlreadyAssigned):
			utils.ConflictResponse(c, err.Error())
		default:
			utils.ErrorResponse(c, http.StatusInternalServerError, "ASSIGNMENT_FAILED", "Failed to assign driver: "+err.Error())
		}
		return
	}

	utils.SuccessResponse(c, "Driver assigned successfully", nil)
}

// UnassignDriver clears the vehicle's driver assignment
func (h *FleetHandler) UnassignDriver(c *gin.Context) {
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	if err := h.fleetService.UnassignDriver(c.Request.Context(), vehicleID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Vehicle")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "UNASSIGNMENT_FAILED", "Failed to unassign driver: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Driver unassigned successfully", nil)
}

// RenewDriverDocument uploads a fresh document, resetting its verification
func (h *FleetHandler) RenewDriverDocument(c *gin.Context) {
	driverID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid driver ID")
		return
	}

	docType := models.DocumentType(c.Param("doc_type"))

	var request renewDocumentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.fleetService.RenewDriverDocument(c.Request.Context(), driverID, docType, request.URL, request.ExpiryDate); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Driver")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "DOCUMENT_RENEW_FAILED", "Failed to renew document: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Document renewed successfully", nil)
}

// RenewVehicleInsurance uploads a fresh insurance certificate
func (h *FleetHandler) RenewVehicleInsurance(c *gin.Context) {
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	var request renewDocumentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.fleetService.RenewVehicleInsurance(c.Request.Context(), vehicleID, request.URL, request.ExpiryDate); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Vehicle")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "INSURANCE_RENEW_FAILED", "Failed to renew insurance: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Insurance renewed successfully", nil)
}

// ApproveDriverDocument verifies an uploaded driver document
func (h *FleetHandler) ApproveDriverDocument(c *gin.Context) {
	driverID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid driver ID")
		return
	}

	docType := models.DocumentType(c.Param("doc_type"))

	verifiedBy, ok := authenticatedUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	if err := h.fleetService.ApproveDriverDocument(c.Request.Context(), driverID, docType, verifiedBy); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Driver document")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "DOCUMENT_APPROVE_FAILED", "Failed to approve document: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Document approved successfully", nil)
}

// ApproveVehicleInsurance verifies an uploaded insurance certificate
func (h *FleetHandler) ApproveVehicleInsurance(c *gin.Context) {
	vehicleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID")
		return
	}

	verifiedBy, ok := authenticatedUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	if err := h.fleetService.ApproveVehicleInsurance(c.Request.Context(), vehicleID, verifiedBy); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Vehicle insurance")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "INSURANCE_APPROVE_FAILED", "Failed to approve insurance: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Insurance approved successfully", nil)
}

func respondEntitlementDenied(c *gin.Context, decision *services.EntitlementDecision) {
	c.JSON(http.StatusForbidden, utils.APIResponse{
		Status: utils.StatusError,
		Error: &utils.APIError{
			Code:    "ENTITLEMENT_DENIED",
			Message: decision.Reason,
		},
		Data:      decision,
		Timestamp: time.Now(),
	})
}

// authenticatedUserID extracts the caller's ID set by the auth middleware.
func authenticatedUserID(c *gin.Context) (primitive.ObjectID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := raw.(primitive.ObjectID)
	return id, ok
}
