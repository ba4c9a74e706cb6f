package routes

import (
	"fleetdesk/internal/handlers"
	"fleetdesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupFleetRoutes sets up routes for driver and vehicle management
func SetupFleetRoutes(r *gin.RouterGroup, fleetHandler *handlers.FleetHandler, jwtSecret string) {
	drivers := r.Group("/drivers")
	drivers.Use(middleware.AuthRequired(jwtSecret))
	{
		drivers.POST("/", fleetHandler.CreateDriver)
		drivers.GET("/:id", fleetHandler.GetDriver)
		drivers.DELETE("/:id", fleetHandler.DeleteDriver)
		drivers.PUT("/:id/documents/:doc_type", fleetHandler.RenewDriverDocument)
	}

	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.AuthRequired(jwtSecret))
	{
		vehicles.POST("/", fleetHandler.CreateVehicle)
		vehicles.GET("/:id", fleetHandler.GetVehicle)
		vehicles.DELETE("/:id", fleetHandler.DeleteVehicle)
		vehicles.PUT("/:id/insurance", fleetHandler.RenewVehicleInsurance)
		vehicles.PUT("/:id/assign", fleetHandler.AssignDriver)
		vehicles.PUT("/:id/unassign", fleetHandler.UnassignDriver)
	}

	// Admin document verification
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.PUT("/drivers/:id/documents/:doc_type/approve", fleetHandler.ApproveDriverDocument)
		admin.PUT("/vehicles/:id/insurance/approve", fleetHandler.ApproveVehicleInsurance)
	}
}
