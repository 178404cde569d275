package router

import (
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/pledgefox/PledgeFox/app/controllers"
	"github.com/pledgefox/PledgeFox/internal/pkg/constants"
	"github.com/pledgefox/PledgeFox/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Auth
	app.Post(constants.LogoutRoute, middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Billing provider webhooks (no CSRF, signature-verified in controller)
	app.Post(constants.WebhookRoute, controllers.HandleBillingWebhook)
}
