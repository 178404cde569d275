package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/internal/pkg/usercontext"
)

// Session and Locals keys shared across controllers and middleware.
const (
	AUTH_KEY       string = "authenticated"
	USER_ID        string = "user_id"
	USER_NAME      string = "user_name"
	USER_EMAIL     string = "user_email"
	USER_IS_ADMIN  string = "isAdmin"
	FROM_PROTECTED string = "from_protected"
)

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(FROM_PROTECTED); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// ExtractUserName gets the member's display name from Locals (set by middleware)
func ExtractUserName(c *fiber.Ctx) string {
	if v := c.Locals(USER_NAME); v != nil {
		if name, ok := v.(string); ok {
			return name
		}
	}

	return ""
}

// layoutMap assembles the fields every page template expects.
func layoutMap(c *fiber.Ctx, page string) fiber.Map {
	ctx := usercontext.GetUserContext(c)
	return fiber.Map{
		"Page":          page,
		"SiteTitle":     models.GetAppSettings().GetSiteTitle(),
		"FromProtected": ctx.IsLoggedIn,
		"IsAdmin":       ctx.IsAdmin,
		"UserName":      ctx.Name,
		"Msg":           flash.Get(c),
	}
}

// GetClientIP determines the actual client IP address considering proxies.
func GetClientIP(c *fiber.Ctx) string {
	if cfIP := c.Get("CF-Connecting-IP"); cfIP != "" {
		return cfIP
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	return c.IP()
}
