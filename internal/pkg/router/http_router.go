package router

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/pledgefox/PledgeFox/app/controllers"
	"github.com/pledgefox/PledgeFox/app/repository"
	"github.com/pledgefox/PledgeFox/internal/pkg/activity"
	"github.com/pledgefox/PledgeFox/internal/pkg/avatar"
	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
	"github.com/pledgefox/PledgeFox/internal/pkg/database"
	"github.com/pledgefox/PledgeFox/internal/pkg/middleware"
	"github.com/pledgefox/PledgeFox/internal/pkg/oauth"
	"github.com/pledgefox/PledgeFox/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	repos := repository.GetGlobalRepositories()
	billingClient := billing.NewClientFromEnv()
	feed := activity.NewService(billingClient, repos.PledgeEvent)

	var avatars *avatar.Store
	if cfg, err := avatar.LoadConfig(); err != nil {
		log.Printf("Avatar storage disabled: %v", err)
	} else if cfg.IsEnabled() {
		if store, err := avatar.NewStore(cfg); err != nil {
			log.Printf("Avatar storage unavailable: %v", err)
		} else {
			avatars = store
		}
	}

	ingest := billing.NewIngestServiceFromDB(database.GetDB(), repos.User, repos.PledgeEvent)

	controllers.InitializeAccountController(feed, billingClient, avatars)
	controllers.InitializeContributeController(billingClient)
	controllers.InitializeAdminController(repos, billingClient)
	controllers.InitializeWebhookController(ingest)

	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func loggedInMiddleware(c *fiber.Ctx) error {
	// UserContextMiddleware already set all user context; pages read it via
	// usercontext.GetUserContext(c).
	return c.Next()
}
