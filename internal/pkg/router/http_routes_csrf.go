package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/pledgefox/PledgeFox/app/controllers"
	"github.com/pledgefox/PledgeFox/internal/pkg/constants"
	"github.com/pledgefox/PledgeFox/internal/pkg/env"
	"github.com/pledgefox/PledgeFox/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/webhooks/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get(constants.HomeRoute, loggedInMiddleware, controllers.HandleStart)

	group.Get(constants.LoginRoute, loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post(constants.LoginRoute, loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get(constants.RegisterRoute, loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post(constants.RegisterRoute, loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/invite/:token", loggedInMiddleware, controllers.HandleInviteAccept)
	group.Post("/invite/:token", loggedInMiddleware, controllers.HandleInviteAccept)

	// Member area
	group.Get(constants.AccountRoute, middleware.RequireAuth, controllers.HandleAccount)
	group.Get(constants.ActivityRoute, middleware.RequireAuth, controllers.HandleAccountActivity)
	group.Get("/account/edit", middleware.RequireAuth, controllers.HandleAccountEdit)
	group.Post("/account/edit", middleware.RequireAuth, controllers.HandleAccountEdit)

	// Contribution
	group.Get(constants.ContributeRoute, middleware.RequireAuth, controllers.HandleContribute)
	group.Post("/contribute/pledge", middleware.RequireAuth, controllers.HandleContributePledge)
	group.Post("/contribute/portal", middleware.RequireAuth, controllers.HandleBillingPortal)

	// Admin forms that need CSRF
	admin := controllers.GetAdminController()
	group.Post("/admin/members/invite", middleware.RequireAdmin, admin.HandleInviteMember)
	group.Post("/admin/members/:id/portal", middleware.RequireAdmin, admin.HandleMemberPortal)
	group.Post("/admin/members/:id/cancel", middleware.RequireAdmin, admin.HandleMemberCancel)
	group.Post("/admin/members/:id/resend-invoice", middleware.RequireAdmin, admin.HandleResendInvoice)
	group.Post("/admin/members/:id/ledger", middleware.RequireAdmin, admin.HandleLedgerCredit)
	group.Get("/admin/settings", middleware.RequireAdmin, admin.HandleSettings)
	group.Post("/admin/settings", middleware.RequireAdmin, admin.HandleSettings)
}
