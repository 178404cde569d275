package mail

import (
	"fmt"
	"strings"

	"github.com/pledgefox/PledgeFox/internal/pkg/env"
)

// SendInvite emails an invited member their account-setup link.
func SendInvite(to, name, inviteToken string) error {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	link := fmt.Sprintf("%s/invite/%s", base, inviteToken)

	greeting := "Hello"
	if strings.TrimSpace(name) != "" {
		greeting = "Hello " + name
	}

	body := fmt.Sprintf(`
		<p>%s,</p>
		<p>You have been invited to become a contributing member. Set up your
		account and choose your monthly contribution here:</p>
		<p><a href="%s">%s</a></p>
		<p>If you were not expecting this invitation you can ignore this email.</p>
	`, greeting, link, link)

	return SendMail(to, "Your membership invitation", body)
}
