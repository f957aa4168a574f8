package models

import (
	"regexp"
	"strings"
	"time"
)

// User is the signed-in identity. Locally at most one row exists; in the
// cloud it is the profile document keyed by OwnerID.
type User struct {
	ID       string
	OwnerID  string
	Name     string
	Email    string
	PhotoRef string

	// local only
	Token        string
	PasswordHash string
	PasswordSalt string

	CreatedAt time.Time
	UpdatedAt time.Time
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9+._%\-]{1,256}@[a-zA-Z0-9][a-zA-Z0-9\-]{0,64}(\.[a-zA-Z0-9][a-zA-Z0-9\-]{0,25})+$`)

// ValidEmail reports whether s has the shape of an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}
