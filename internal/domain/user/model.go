package user

import (
	"fmt"
	"strings"
)

// User is a league member. Admins operate the league and never play.
type User struct {
	ID       string
	Email    string
	Username string
	TeamName string
	IsAdmin  bool
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	return nil
}

// DisplayName prefers the username and falls back to the email.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	return u.Email
}

// Principal is the authenticated caller as issued by the auth provider.
type Principal struct {
	UserID string
	Email  string
}

func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.UserID) != ""
}

// Players drops admins, keeping input order.
func Players(users []User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.IsAdmin {
			continue
		}
		out = append(out, u)
	}
	return out
}
