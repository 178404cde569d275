package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/pledgefox/PledgeFox/app/repository"
	apiv1 "github.com/pledgefox/PledgeFox/internal/api/v1"
	"github.com/pledgefox/PledgeFox/internal/pkg/activity"
	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
	"github.com/pledgefox/PledgeFox/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	repos := repository.GetGlobalRepositories()
	feed := activity.NewService(billing.NewClientFromEnv(), repos.PledgeEvent)
	apiServer := apiv1.NewAPIServer(feed)

	// API v1 routes (session-scoped)
	v1 := api.Group("/v1")
	v1.Get("/ping", apiServer.GetPing)
	v1.Get("/status", middleware.RequireAPISessionAuth, apiServer.GetStatus)
	v1.Get("/activity", middleware.RequireAPISessionAuth, apiServer.GetActivity)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
