package apiv1

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/pledgefox/PledgeFox/app/repository"
	"github.com/pledgefox/PledgeFox/internal/pkg/activity"
	"github.com/pledgefox/PledgeFox/internal/pkg/format"
	"github.com/pledgefox/PledgeFox/internal/pkg/usercontext"
)

// APIServer implements the session-scoped JSON API consumed by the frontend.
type APIServer struct {
	feed *activity.Service
}

// NewAPIServer creates a new API server instance
func NewAPIServer(feed *activity.Service) *APIServer {
	return &APIServer{feed: feed}
}

// Pong is the ping response body.
type Pong struct {
	Ping string `json:"ping"`
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// GetStatus returns the authenticated member's contribution snapshot.
func (s *APIServer) GetStatus(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
	}

	resp := fiber.Map{
		"name":                 user.Name,
		"status":               user.Status,
		"monthly_pledge_cents": user.MonthlyPledgeCents,
		"pledge_display":       format.Cents(user.MonthlyPledgeCents),
	}
	if user.MembershipCancelAt != nil {
		resp["membership_cancel_at"] = user.MembershipCancelAt.Format("2006-01-02")
	}
	return c.JSON(resp)
}

// GetActivity returns the composed activity feed as JSON. The full query
// parameter switches from the compact dashboard variant to the complete
// history including the scheduled-cancellation row.
func (s *APIServer) GetActivity(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
	}

	full := c.QueryBool("full", false)
	opts := activity.FeedOptions{Limit: activity.CapCompact}
	if full {
		opts = activity.FeedOptions{Limit: activity.CapFull, IncludeScheduled: true}
	}

	feed, err := s.feed.BuildFeed(c.Context(), user, opts)
	if err != nil {
		log.Printf("Activity API failed for user %d: %v", userID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "activity feed unavailable"})
	}

	resp := fiber.Map{"items": feed.Items}
	if feed.Scheduled != nil {
		resp["cancel_scheduled"] = fiber.Map{
			"cancel_at_iso": feed.Scheduled.CancelAtISO,
		}
	}
	return c.JSON(resp)
}
