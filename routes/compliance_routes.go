package routes

import (
	"fleetdesk/internal/handlers"
	"fleetdesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupComplianceRoutes sets up routes for the compliance sweep
func SetupComplianceRoutes(r *gin.RouterGroup, complianceHandler *handlers.ComplianceHandler, jwtSecret string) {
	admin := r.Group("/admin/compliance")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("/sweep", complianceHandler.TriggerSweep)
	}
}
