package controllers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/app/repository"
	"github.com/pledgefox/PledgeFox/internal/pkg/activity"
	"github.com/pledgefox/PledgeFox/internal/pkg/avatar"
	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
	"github.com/pledgefox/PledgeFox/internal/pkg/format"
	"github.com/pledgefox/PledgeFox/internal/pkg/metrics/counter"
	"github.com/pledgefox/PledgeFox/internal/pkg/session"
	"github.com/pledgefox/PledgeFox/internal/pkg/usercontext"
	"github.com/pledgefox/PledgeFox/internal/pkg/utils"
	"github.com/pledgefox/PledgeFox/internal/pkg/viewmodel"
)

var (
	accountFeed    *activity.Service
	accountBilling *billing.Client
	accountAvatars *avatar.Store
)

// InitializeAccountController wires the activity service, the billing client
// for invoice paging, and the avatar store. The avatar store may be nil when
// S3 storage is disabled.
func InitializeAccountController(feed *activity.Service, client *billing.Client, avatars *avatar.Store) {
	accountFeed = feed
	accountBilling = client
	accountAvatars = avatars
}

func currentUser(c *fiber.Ctx) (*models.User, error) {
	userID := usercontext.GetUserID(c)
	if userID == 0 {
		return nil, fiber.ErrUnauthorized
	}
	return repository.GetGlobalFactory().GetUserRepository().GetByID(userID)
}

// feedRows renders feed items for the templates.
func feedRows(items []activity.Item) []viewmodel.ActivityRow {
	rows := make([]viewmodel.ActivityRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, viewmodel.ActivityRow{
			Type:   string(it.Type),
			Title:  it.Title,
			Amount: it.Amount,
			Right:  it.Right,
			Href:   it.Href,
		})
	}
	return rows
}

func cancelBannerDate(b *activity.Banner) string {
	if b == nil {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, b.CancelAtISO); err == nil {
		return t.Format("January 2, 2006")
	}
	if t, err := time.Parse("2006-01-02", b.CancelAtISO); err == nil {
		return t.Format("January 2, 2006")
	}
	return b.CancelAtISO
}

// HandleAccount renders the member dashboard: profile card, contribution
// status and the compact activity feed.
func HandleAccount(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return c.Redirect("/login")
	}

	feed, feedErr := accountFeed.BuildFeed(c.Context(), user, activity.FeedOptions{
		Limit: activity.CapCompact,
	})
	if feedErr != nil {
		log.Printf("Activity feed unavailable for user %d: %v", user.ID, feedErr)
	}

	if err := counter.AddProfileView(user.ID); err != nil {
		log.Printf("Profile view counter failed for user %d: %v", user.ID, err)
	}

	data := layoutMap(c, "Account")
	data["User"] = user
	data["AvatarURL"] = avatarURLFor(user)
	data["PledgeDisplay"] = format.Cents(user.MonthlyPledgeCents)
	data["HasPledge"] = user.MonthlyPledgeCents > 0
	data["Activity"] = feedRows(feed.Items)
	data["FeedUnavailable"] = feedErr != nil
	data["CancelScheduled"] = feed.Scheduled != nil
	data["CancelAt"] = cancelBannerDate(feed.Scheduled)
	if user.MembershipCancelAt != nil {
		data["CancelScheduled"] = true
		if data["CancelAt"] == "" {
			data["CancelAt"] = user.MembershipCancelAt.Format("January 2, 2006")
		}
	}
	return c.Render("account/index", data)
}

// HandleAccountActivity renders the full activity history with cursor-based
// invoice paging. The cursor is the billing provider's starting_after token;
// a cursor request shows only the older invoice page, not the merged feed.
func HandleAccountActivity(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return c.Redirect("/login")
	}

	data := layoutMap(c, "Activity")

	after := c.Query("after")
	if (after != "" || c.QueryBool("invoices", false)) && user.BillingCustomerRef != "" {
		page, err := accountBilling.ListInvoices(c.Context(), user.BillingCustomerRef, activity.CapFull, after)
		if err != nil {
			log.Printf("Invoice page unavailable for user %d: %v", user.ID, err)
			data["FeedUnavailable"] = true
			return c.Render("account/activity", data)
		}
		data["InvoiceHistory"] = true
		data["Activity"] = invoicePageRows(page.Invoices)
		if page.HasMore && page.NextCursor != "" {
			data["NextCursor"] = page.NextCursor
		}
		return c.Render("account/activity", data)
	}

	feed, feedErr := accountFeed.BuildFeed(c.Context(), user, activity.FeedOptions{
		Limit:            activity.CapFull,
		IncludeScheduled: true,
	})
	if feedErr != nil {
		log.Printf("Activity feed unavailable for user %d: %v", user.ID, feedErr)
	}

	data["Activity"] = feedRows(feed.Items)
	data["FeedUnavailable"] = feedErr != nil
	data["CancelScheduled"] = feed.Scheduled != nil
	data["CancelAt"] = cancelBannerDate(feed.Scheduled)
	data["HasInvoiceHistory"] = user.BillingCustomerRef != ""
	return c.Render("account/activity", data)
}

// invoicePageRows renders one raw invoice page in the same row shape the
// composed feed uses.
func invoicePageRows(invoices []billing.Invoice) []viewmodel.ActivityRow {
	rows := make([]viewmodel.ActivityRow, 0, len(invoices))
	for _, inv := range invoices {
		item := activity.NormalizeInvoice(inv)
		rows = append(rows, viewmodel.ActivityRow{
			Type:   string(item.Type),
			Title:  item.Title,
			Amount: item.Amount,
			Right:  item.Right,
			Href:   item.Href,
		})
	}
	return rows
}

// avatarURLFor returns the stored avatar or a gravatar fallback.
func avatarURLFor(user *models.User) string {
	if user.AvatarURL != "" {
		return user.AvatarURL
	}
	return utils.GetGravatarURL(user.Email, 256)
}

// HandleAccountEdit renders and processes the profile form, including the
// optional avatar upload and password change.
func HandleAccountEdit(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return c.Redirect("/login")
	}

	if c.Method() == fiber.MethodPost {
		return handleAccountEditPost(c, user)
	}

	data := layoutMap(c, "Edit profile")
	data["User"] = user
	data["AvatarURL"] = avatarURLFor(user)
	data["AvatarUploadEnabled"] = accountAvatars != nil
	data["CSRFToken"] = c.Locals("csrf")
	return c.Render("account/edit", data)
}

func handleAccountEditPost(c *fiber.Ctx, user *models.User) error {
	userRepo := repository.GetGlobalFactory().GetUserRepository()

	name := strings.TrimSpace(c.FormValue("name"))
	bio := strings.TrimSpace(c.FormValue("bio"))
	if name != "" {
		user.Name = name
	}
	user.Bio = bio

	// Optional email change; must stay unique
	if email := strings.TrimSpace(strings.ToLower(c.FormValue("email"))); email != "" && email != user.Email {
		if other, err := userRepo.GetByEmail(email); err == nil && other.ID != user.ID {
			fm := fiber.Map{"type": "error", "message": "This email is already in use."}
			return flash.WithError(c, fm).Redirect("/account/edit")
		}
		user.Email = email
	}

	// Optional avatar upload
	if accountAvatars != nil {
		if file, err := c.FormFile("avatar"); err == nil && file.Size > 0 {
			src, err := file.Open()
			if err != nil {
				fm := fiber.Map{"type": "error", "message": "Could not read the uploaded image."}
				return flash.WithError(c, fm).Redirect("/account/edit")
			}
			url, err := accountAvatars.Save(c.Context(), user.PublicID, src)
			src.Close()
			if err != nil {
				log.Printf("Avatar upload failed for user %d: %v", user.ID, err)
				fm := fiber.Map{"type": "error", "message": "Avatar upload failed. Please try a different image."}
				return flash.WithError(c, fm).Redirect("/account/edit")
			}
			user.AvatarURL = url
		}
	}

	// Optional password change
	currentPw := c.FormValue("current_password")
	newPw := c.FormValue("new_password")
	if newPw != "" {
		if !user.CheckPassword(currentPw) {
			fm := fiber.Map{"type": "error", "message": "Current password is incorrect."}
			return flash.WithError(c, fm).Redirect("/account/edit")
		}
		if len(newPw) < 6 {
			fm := fiber.Map{"type": "error", "message": "New password must be at least 6 characters."}
			return flash.WithError(c, fm).Redirect("/account/edit")
		}
		if err := user.SetPassword(newPw); err != nil {
			log.Printf("Password update failed for user %d: %v", user.ID, err)
			fm := fiber.Map{"type": "error", "message": "Password update failed."}
			return flash.WithError(c, fm).Redirect("/account/edit")
		}
	}

	if err := userRepo.Update(user); err != nil {
		log.Printf("Profile update failed for user %d: %v", user.ID, err)
		fm := fiber.Map{"type": "error", "message": "Profile update failed."}
		return flash.WithError(c, fm).Redirect("/account/edit")
	}

	// Keep the session display values in sync
	if err := session.SetSessionValue(c, USER_NAME, user.Name); err != nil {
		log.Printf("Session update failed for user %d: %v", user.ID, err)
	}
	if err := session.SetSessionValue(c, USER_EMAIL, user.Email); err != nil {
		log.Printf("Session update failed for user %d: %v", user.ID, err)
	}

	fm := fiber.Map{"type": "success", "message": "Profile updated."}
	return flash.WithSuccess(c, fm).Redirect("/account")
}
