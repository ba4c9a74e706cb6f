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

type SubscriptionHandler struct {
	subscriptionService services.SubscriptionService
	entitlementService  services.EntitlementService
}

func NewSubscriptionHandler(
	subscriptionService services.SubscriptionService,
	entitlementService services.EntitlementService,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		entitlementService:  entitlementService,
	}
}

// CreatePlan adds a subscription plan
func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var plan models.Plan
	if err := c.ShouldBindJSON(&plan); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.subscriptionService.CreatePlan(c.Request.Context(), &plan); err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "PLAN_CREATE_FAILED", "Failed to create plan: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Plan created successfully", plan)
}

// ListPlans lists all subscription plans
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptionService.ListPlans(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "PLANS_FETCH_FAILED", "Failed to list plans: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Plans retrieved successfully", plans)
}

// Subscribe activates a plan for the authenticated transporter
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request struct {
		PlanID string `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	planID, err := primitive.ObjectIDFromHex(request.PlanID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid plan ID")
		return
	}

	subscriber, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, planID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Plan")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "SUBSCRIBE_FAILED", "Failed to subscribe: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Subscription activated successfully", subscriber)
}

// GetActiveSubscription returns the caller's active subscription
func (h *SubscriptionHandler) GetActiveSubscription(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	subscriber, err := h.subscriptionService.GetActiveSubscription(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Active subscription")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "SUBSCRIPTION_FETCH_FAILED", "Failed to get subscription: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Subscription retrieved successfully", subscriber)
}

// CheckEntitlement reports whether the company may add another resource
func (h *SubscriptionHandler) CheckEntitlement(c *gin.Context) {
	companyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid company ID")
		return
	}

	resourceType := services.ResourceType(c.Query("resource"))

	decision, err := h.entitlementService.CanAdd(c.Request.Context(), resourceType, companyID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			utils.NotFoundResponse(c, "Company")
			return
		}
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, "Entitlement evaluated", decision)
}
