package viewmodel

import "github.com/gofiber/fiber/v2"

// Layout carries the fields every page template needs.
type Layout struct {
	Page          string
	FromProtected bool
	IsError       bool
	Msg           fiber.Map
	UserName      string
	IsAdmin       bool
	SiteTitle     string
}
