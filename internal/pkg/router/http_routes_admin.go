package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pledgefox/PledgeFox/app/controllers"
	"github.com/pledgefox/PledgeFox/internal/pkg/constants"
	"github.com/pledgefox/PledgeFox/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	admin := controllers.GetAdminController()

	adminGroup := app.Group(constants.AdminRoute, middleware.RequireAdmin)
	adminGroup.Get("/", admin.HandleDashboard)
	adminGroup.Get("/members", admin.HandleMembers)
	adminGroup.Get("/members/:id", admin.HandleMemberDetail)
}
