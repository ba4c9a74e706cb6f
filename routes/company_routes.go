package routes

import (
	"fleetdesk/internal/handlers"
	"fleetdesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCompanyRoutes sets up routes for company onboarding and review
func SetupCompanyRoutes(r *gin.RouterGroup, companyHandler *handlers.CompanyHandler, jwtSecret string) {
	companies := r.Group("/companies")
	companies.Use(middleware.AuthRequired(jwtSecret))
	{
		companies.POST("/", companyHandler.CreateCompany)
		companies.GET("/:id", companyHandler.GetCompany)
		companies.GET("/:id/notifications", companyHandler.GetCompanyNotifications)
	}

	// Admin review of pending companies
	admin := r.Group("/admin/companies")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.PUT("/:id/approve", companyHandler.ApproveCompany)
		admin.PUT("/:id/reject", companyHandler.RejectCompany)
	}
}
