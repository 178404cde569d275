package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/internal/pkg/format"
	"github.com/pledgefox/PledgeFox/internal/pkg/statistics"
)

// HandleStart renders the home page with the community figures.
func HandleStart(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()
	settings := models.GetAppSettings()

	data := layoutMap(c, "home")
	data["SiteDescription"] = settings.SiteDescription
	data["TotalMembers"] = stats.TotalMembers
	data["ActiveMembers"] = stats.ActiveMembers
	data["MonthlyPledge"] = format.Cents(stats.MonthlyPledgeCents)
	data["CapitalTotal"] = format.Cents(stats.CapitalTotalCents)

	return c.Render("home", data)
}
