package routes

import (
	"fleetdesk/internal/handlers"
	"fleetdesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSubscriptionRoutes sets up routes for plans and subscriptions
func SetupSubscriptionRoutes(r *gin.RouterGroup, subscriptionHandler *handlers.SubscriptionHandler, jwtSecret string) {
	plans := r.Group("/plans")
	{
		plans.GET("/", subscriptionHandler.ListPlans)
	}

	adminPlans := r.Group("/admin/plans")
	adminPlans.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		adminPlans.POST("/", subscriptionHandler.CreatePlan)
	}

	subscriptions := r.Group("/subscriptions")
	subscriptions.Use(middleware.AuthRequired(jwtSecret))
	{
		subscriptions.POST("/", subscriptionHandler.Subscribe)
		subscriptions.GET("/active", subscriptionHandler.GetActiveSubscription)
	}

	companies := r.Group("/companies")
	companies.Use(middleware.AuthRequired(jwtSecret))
	{
		companies.GET("/:id/entitlement", subscriptionHandler.CheckEntitlement)
	}
}
