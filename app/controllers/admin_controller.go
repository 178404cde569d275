package controllers

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/app/repository"
	"github.com/pledgefox/PledgeFox/internal/pkg/billing"
	"github.com/pledgefox/PledgeFox/internal/pkg/database"
	"github.com/pledgefox/PledgeFox/internal/pkg/env"
	"github.com/pledgefox/PledgeFox/internal/pkg/format"
	"github.com/pledgefox/PledgeFox/internal/pkg/mail"
	"github.com/pledgefox/PledgeFox/internal/pkg/statistics"
	"github.com/pledgefox/PledgeFox/internal/pkg/usercontext"
	"github.com/pledgefox/PledgeFox/internal/pkg/viewmodel"
)

// AdminController handles the back-office pages: dashboard, member
// management, the capital ledger and site settings.
type AdminController struct {
	repos   *repository.Repositories
	billing *billing.Client
}

var adminController *AdminController

// InitializeAdminController sets up the admin controller with its dependencies
func InitializeAdminController(repos *repository.Repositories, client *billing.Client) {
	adminController = &AdminController{repos: repos, billing: client}
}

// GetAdminController returns the singleton admin controller instance
func GetAdminController() *AdminController {
	return adminController
}

// HandleDashboard renders the admin landing page with the cached site figures.
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	statistics.UpdateCacheIfNeeded()
	stats := statistics.GetStatisticsData()

	recent, err := ac.repos.PledgeEvent.ListRecent(10)
	if err != nil {
		log.Printf("Recent pledge events unavailable: %v", err)
	}

	signups, err := ac.repos.User.GetDailyStats(time.Now().AddDate(0, 0, -30), time.Now())
	if err != nil {
		log.Printf("Signup stats unavailable: %v", err)
	}

	data := layoutMap(c, "Admin")
	data["TotalMembers"] = stats.TotalMembers
	data["ActiveMembers"] = stats.ActiveMembers
	data["MonthlyPledge"] = format.Cents(stats.MonthlyPledgeCents)
	data["CapitalTotal"] = format.Cents(stats.CapitalTotalCents)
	data["RecentEvents"] = recent
	data["Signups"] = signups
	return c.Render("admin/dashboard", data)
}

// memberRows joins the local member table with the billing provider's view.
// Billing data wins for pledge and cancellation columns; a provider outage
// degrades the list to local data only.
func (ac *AdminController) memberRows(c *fiber.Ctx, query, status string) []viewmodel.MemberRow {
	users, err := ac.repos.User.Search(query, status)
	if err != nil {
		log.Printf("Member search failed: %v", err)
		return nil
	}

	remote := map[string]billing.AdminMember{}
	if members, err := ac.billing.ListMembers(c.Context(), query, status); err != nil {
		log.Printf("Billing member list unavailable: %v", err)
	} else {
		for _, m := range members {
			remote[m.MemberRef] = m
		}
	}

	rows := make([]viewmodel.MemberRow, 0, len(users))
	for _, u := range users {
		row := viewmodel.MemberRow{
			PublicID:      u.PublicID,
			Name:          u.Name,
			Email:         u.Email,
			Status:        u.Status,
			PledgeDisplay: format.Cents(u.MonthlyPledgeCents),
			MemberRef:     u.BillingCustomerRef,
		}
		if u.MembershipCancelAt != nil {
			row.CancelAt = u.MembershipCancelAt.Format("2006-01-02")
		}
		if m, ok := remote[u.BillingCustomerRef]; ok {
			row.PledgeDisplay = format.Cents(m.MonthlyCents)
			if m.CancelAtISO != "" {
				row.CancelAt = m.CancelAtISO
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// HandleMembers renders the member table with search and status filters.
func (ac *AdminController) HandleMembers(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	status := strings.TrimSpace(c.Query("status"))

	data := layoutMap(c, "Members")
	data["Members"] = ac.memberRows(c, query, status)
	data["Query"] = query
	data["StatusFilter"] = status
	data["CSRFToken"] = c.Locals("csrf")
	return c.Render("admin/members", data)
}

// HandleMemberDetail renders one member's drawer: profile, billing detail
// with recent invoices, and the capital ledger.
func (ac *AdminController) HandleMemberDetail(c *fiber.Ctx) error {
	user, err := ac.repos.User.GetByPublicID(c.Params("id"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Member not found."}
		return flash.WithError(c, fm).Redirect("/admin/members")
	}

	data := layoutMap(c, "Member")
	data["Member"] = user
	data["PledgeDisplay"] = format.Cents(user.MonthlyPledgeCents)
	data["CSRFToken"] = c.Locals("csrf")

	if user.BillingCustomerRef != "" {
		detail, err := ac.billing.GetMember(c.Context(), user.BillingCustomerRef)
		if err != nil {
			log.Printf("Billing detail unavailable for member %s: %v", user.PublicID, err)
			data["BillingUnavailable"] = true
		} else {
			data["Billing"] = detail
			type invoiceRow struct {
				ID      string
				Status  string
				Amount  string
				HostURL string
			}
			rows := make([]invoiceRow, 0, len(detail.Invoices))
			for _, inv := range detail.Invoices {
				amount := inv.AmountPaid
				if amount == 0 {
					amount = inv.AmountDue
				}
				rows = append(rows, invoiceRow{
					ID:      inv.ID,
					Status:  inv.Status,
					Amount:  format.Cents(amount),
					HostURL: inv.HostedURL(),
				})
			}
			data["Invoices"] = rows
		}
	}

	entries, err := ac.repos.Ledger.ListByUser(user.ID)
	if err != nil {
		log.Printf("Ledger unavailable for member %s: %v", user.PublicID, err)
	}
	ledger := make([]viewmodel.LedgerRow, 0, len(entries))
	for _, e := range entries {
		ledger = append(ledger, viewmodel.LedgerRow{
			Date:          e.CreatedAt.Format("2006-01-02"),
			AmountDisplay: format.Cents(e.AmountCents),
			Note:          e.Note,
		})
	}
	data["Ledger"] = ledger
	if total, err := ac.repos.Ledger.SumByUser(user.ID); err == nil {
		data["LedgerTotal"] = format.Cents(total)
	}

	return c.Render("admin/member_detail", data)
}

// HandleMemberPortal opens a billing-portal session on the member's behalf.
func (ac *AdminController) HandleMemberPortal(c *fiber.Ctx) error {
	user, err := ac.repos.User.GetByPublicID(c.Params("id"))
	if err != nil || user.BillingCustomerRef == "" {
		fm := fiber.Map{"type": "error", "message": "Member has no billing account."}
		return flash.WithError(c, fm).Redirect("/admin/members")
	}
	returnURL := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000") + "/admin/members/" + user.PublicID
	url, err := ac.billing.OpenPortalForMember(c.Context(), user.BillingCustomerRef, returnURL)
	if err != nil {
		log.Printf("Admin portal failed for member %s: %v", user.PublicID, err)
		fm := fiber.Map{"type": "error", "message": "Billing portal is unavailable right now."}
		return flash.WithError(c, fm).Redirect("/admin/members/" + user.PublicID)
	}
	return c.Redirect(url, fiber.StatusSeeOther)
}

// HandleMemberCancel asks the billing provider to cancel the member's
// subscription at period end. Local state follows via webhook.
func (ac *AdminController) HandleMemberCancel(c *fiber.Ctx) error {
	user, err := ac.repos.User.GetByPublicID(c.Params("id"))
	if err != nil || user.BillingCustomerRef == "" {
		fm := fiber.Map{"type": "error", "message": "Member has no billing account."}
		return flash.WithError(c, fm).Redirect("/admin/members")
	}
	if err := ac.billing.CancelSubscription(c.Context(), user.BillingCustomerRef); err != nil {
		log.Printf("Cancel subscription failed for member %s: %v", user.PublicID, err)
		fm := fiber.Map{"type": "error", "message": "Cancellation request failed."}
		return flash.WithError(c, fm).Redirect("/admin/members/" + user.PublicID)
	}
	fm := fiber.Map{"type": "success", "message": "Cancellation scheduled at period end."}
	return flash.WithSuccess(c, fm).Redirect("/admin/members/" + user.PublicID)
}

// HandleResendInvoice re-sends a finalized invoice to the member.
func (ac *AdminController) HandleResendInvoice(c *fiber.Ctx) error {
	publicID := c.Params("id")
	invoiceID := c.FormValue("invoice_id")
	if invoiceID == "" {
		fm := fiber.Map{"type": "error", "message": "Missing invoice reference."}
		return flash.WithError(c, fm).Redirect("/admin/members/" + publicID)
	}
	if err := ac.billing.ResendInvoice(c.Context(), invoiceID); err != nil {
		log.Printf("Resend invoice %s failed: %v", invoiceID, err)
		fm := fiber.Map{"type": "error", "message": "Resend failed."}
		return flash.WithError(c, fm).Redirect("/admin/members/" + publicID)
	}
	fm := fiber.Map{"type": "success", "message": "Invoice sent."}
	return flash.WithSuccess(c, fm).Redirect("/admin/members/" + publicID)
}

// HandleInviteMember creates an invited member locally, registers them with
// the billing provider, and mails the invite link.
func (ac *AdminController) HandleInviteMember(c *fiber.Ctx) error {
	email := strings.TrimSpace(strings.ToLower(c.FormValue("email")))
	name := strings.TrimSpace(c.FormValue("name"))
	if email == "" || name == "" {
		fm := fiber.Map{"type": "error", "message": "Name and email are required."}
		return flash.WithError(c, fm).Redirect("/admin/members")
	}
	if _, err := ac.repos.User.GetByEmail(email); err == nil {
		fm := fiber.Map{"type": "error", "message": "A member with this email already exists."}
		return flash.WithError(c, fm).Redirect("/admin/members")
	}

	user, err := models.CreateUser(name, email, "invite-pending")
	if err != nil {
		log.Printf("Invite create failed for %s: %v", email, err)
		fm := fiber.Map{"type": "error", "message": "Could not create the member."}
		return flash.WithError(c, fm).Redirect("/admin/members")
	}
	user.Status = models.STATUS_INVITED
	if err := user.GenerateInviteToken(); err != nil {
		log.Printf("Invite token failed for %s: %v", email, err)
		fm := fiber.Map{"type": "error", "message": "Could not create the invite."}
		return flash.WithError(c, fm).Redirect("/admin/members")
	}
	// Billing registration is best effort: the member can be linked later
	if ref, err := ac.billing.InviteMember(c.Context(), email, name); err != nil {
		log.Printf("Billing invite failed for %s: %v", email, err)
	} else {
		user.BillingCustomerRef = ref
	}

	if err := ac.repos.User.Create(user); err != nil {
		log.Printf("Invite save failed for %s: %v", email, err)
		fm := fiber.Map{"type": "error", "message": "Could not save the member."}
		return flash.WithError(c, fm).Redirect("/admin/members")
	}

	if err := mail.SendInvite(user.Email, user.Name, user.InviteToken); err != nil {
		log.Printf("Invite mail failed for %s: %v", email, err)
		fm := fiber.Map{"type": "warning", "message": "Member created, but the invite mail could not be sent."}
		return flash.WithInfo(c, fm).Redirect("/admin/members")
	}

	go statistics.UpdateStatisticsCache()

	fm := fiber.Map{"type": "success", "message": "Invite sent to " + user.Email + "."}
	return flash.WithSuccess(c, fm).Redirect("/admin/members")
}

// HandleLedgerCredit records a manual capital ledger entry for a member.
func (ac *AdminController) HandleLedgerCredit(c *fiber.Ctx) error {
	user, err := ac.repos.User.GetByPublicID(c.Params("id"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Member not found."}
		return flash.WithError(c, fm).Redirect("/admin/members")
	}

	amountCents := format.ParseDollarsToCents(c.FormValue("amount"))
	if amountCents == 0 {
		fm := fiber.Map{"type": "error", "message": "Amount must not be zero."}
		return flash.WithError(c, fm).Redirect("/admin/members/" + user.PublicID)
	}

	entry := &models.LedgerEntry{
		UserID:      user.ID,
		AmountCents: amountCents,
		Note:        strings.TrimSpace(c.FormValue("note")),
		CreatedByID: usercontext.GetUserID(c),
	}
	if err := ac.repos.Ledger.Create(entry); err != nil {
		log.Printf("Ledger entry failed for member %s: %v", user.PublicID, err)
		fm := fiber.Map{"type": "error", "message": "Could not record the entry."}
		return flash.WithError(c, fm).Redirect("/admin/members/" + user.PublicID)
	}

	go statistics.UpdateStatisticsCache()

	fm := fiber.Map{"type": "success", "message": "Ledger entry recorded."}
	return flash.WithSuccess(c, fm).Redirect("/admin/members/" + user.PublicID)
}

// HandleSettings renders and saves the site settings form.
func (ac *AdminController) HandleSettings(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		settings := models.GetAppSettings()
		if v := strings.TrimSpace(c.FormValue("site_title")); v != "" {
			settings.SiteTitle = v
		}
		settings.SiteDescription = strings.TrimSpace(c.FormValue("site_description"))
		settings.RegistrationEnabled = c.FormValue("registration_enabled") == "on"
		if v := c.FormValue("min_pledge_dollars"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				settings.MinPledgeDollars = n
			}
		}
		if v := c.FormValue("max_pledge_dollars"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				settings.MaxPledgeDollars = n
			}
		}
		if err := models.SaveSettings(database.GetDB(), settings); err != nil {
			log.Printf("Settings save failed: %v", err)
			fm := fiber.Map{"type": "error", "message": "Could not save settings."}
			return flash.WithError(c, fm).Redirect("/admin/settings")
		}
		fm := fiber.Map{"type": "success", "message": "Settings saved."}
		return flash.WithSuccess(c, fm).Redirect("/admin/settings")
	}

	data := layoutMap(c, "Settings")
	data["Settings"] = models.GetAppSettings()
	data["CSRFToken"] = c.Locals("csrf")
	return c.Render("admin/settings", data)
}
