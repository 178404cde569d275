package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GetGravatarURL builds the Gravatar fallback URL for members without an
// uploaded avatar. Defaults to 256px, matching the stored avatar size.
func GetGravatarURL(email string, size int) string {
	if size <= 0 {
		size = 256
	}

	email = strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(email))

	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
