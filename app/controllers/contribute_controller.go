package controllers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/app/repository"
	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
	"github.com/pledgefox/PledgeFox/internal/pkg/env"
	"github.com/pledgefox/PledgeFox/internal/pkg/format"
	"github.com/pledgefox/PledgeFox/internal/pkg/statuscache"
)

var (
	billingClient *billing.Client
	statusCache   *statuscache.Cache[billing.ContributionStatus]
)

// InitializeContributeController wires the billing client and the short-lived
// contribution status cache used to render the pledge hero.
func InitializeContributeController(client *billing.Client) {
	billingClient = client
	statusCache = statuscache.New(statuscache.DefaultTTL, func(ctx context.Context, customerRef string) (billing.ContributionStatus, error) {
		return client.GetContributionStatus(ctx, customerRef)
	})
}

// HandleContribute renders the pledge page: current status plus the form to
// start or change a monthly contribution.
func HandleContribute(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return c.Redirect("/login")
	}

	data := layoutMap(c, "Contribute")
	settings := models.GetAppSettings()
	minDollars, maxDollars := settings.PledgeBounds()
	data["MinPledge"] = minDollars
	data["MaxPledge"] = maxDollars
	data["CSRFToken"] = c.Locals("csrf")
	data["PledgeDisplay"] = format.Cents(user.MonthlyPledgeCents)
	data["HasPledge"] = user.MonthlyPledgeCents > 0

	if user.BillingCustomerRef != "" {
		status, err := statusCache.Get(c.Context(), user.BillingCustomerRef)
		if err != nil {
			log.Printf("Contribution status unavailable for user %d: %v", user.ID, err)
			data["StatusUnavailable"] = true
		} else {
			data["PledgeDisplay"] = format.Cents(status.PledgeCents())
			data["HasPledge"] = status.PledgeCents() > 0
			if status.NextBillingUnix > 0 {
				data["NextBilling"] = time.Unix(status.NextBillingUnix, 0).Format("January 2, 2006")
			}
			if status.Subscription != nil && status.Subscription.CancelAtPeriodEnd && status.Subscription.CancelAt > 0 {
				data["CancelScheduled"] = true
				data["CancelAt"] = time.Unix(status.Subscription.CancelAt, 0).Format("January 2, 2006")
			}
		}
	}

	return c.Render("contribute/index", data)
}

// HandleContributePledge starts or updates the monthly pledge. The amount is
// validated against the configured bounds, then the billing provider drives
// checkout via redirect.
func HandleContributePledge(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return c.Redirect("/login")
	}

	amountCents := format.ParseDollarsToCents(c.FormValue("amount"))
	settings := models.GetAppSettings()
	minDollars, maxDollars := settings.PledgeBounds()
	if amountCents < int64(minDollars)*100 || amountCents > int64(maxDollars)*100 {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("Pledge must be between $%d and $%d per month.", minDollars, maxDollars),
		}
		return flash.WithError(c, fm).Redirect("/contribute")
	}

	returnURL := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000") + "/account"
	result, err := billingClient.StartContribution(c.Context(), user.BillingCustomerRef, user.Email, amountCents, returnURL)
	if err != nil {
		log.Printf("Start contribution failed for user %d: %v", user.ID, err)
		fm := fiber.Map{"type": "error", "message": "Could not start the contribution. Please try again."}
		return flash.WithError(c, fm).Redirect("/contribute")
	}

	// New customers get their billing reference on first checkout
	if result.CustomerRef != "" && result.CustomerRef != user.BillingCustomerRef {
		user.BillingCustomerRef = result.CustomerRef
		if err := repository.GetGlobalFactory().GetUserRepository().Update(user); err != nil {
			log.Printf("Saving billing reference failed for user %d: %v", user.ID, err)
		}
	}
	statusCache.Invalidate(user.BillingCustomerRef)

	if url := result.RedirectURL(); url != "" {
		return c.Redirect(url, fiber.StatusSeeOther)
	}

	fm := fiber.Map{"type": "success", "message": "Your pledge has been updated."}
	return flash.WithSuccess(c, fm).Redirect("/account")
}

// HandleBillingPortal sends the member to the provider's self-service portal.
func HandleBillingPortal(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return c.Redirect("/login")
	}
	if user.BillingCustomerRef == "" {
		fm := fiber.Map{"type": "error", "message": "Start a contribution first to access billing."}
		return flash.WithError(c, fm).Redirect("/contribute")
	}

	returnURL := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000") + "/account"
	url, err := billingClient.OpenBillingPortal(c.Context(), user.BillingCustomerRef, returnURL)
	if err != nil {
		log.Printf("Billing portal failed for user %d: %v", user.ID, err)
		fm := fiber.Map{"type": "error", "message": "Billing portal is unavailable right now."}
		return flash.WithError(c, fm).Redirect("/account")
	}
	return c.Redirect(url, fiber.StatusSeeOther)
}
