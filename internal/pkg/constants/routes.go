package constants

// Static route constants
const (
	HomeRoute       = "/"
	LoginRoute      = "/login"
	RegisterRoute   = "/register"
	LogoutRoute     = "/logout"
	AccountRoute    = "/account"
	ActivityRoute   = "/account/activity"
	ContributeRoute = "/contribute"
	AdminRoute      = "/admin"
	WebhookRoute    = "/webhooks/billing"
)
