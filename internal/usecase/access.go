package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantaqb/internal/domain/game"
	"github.com/riskibarqy/fantaqb/internal/domain/user"
)

// requireAdmin resolves the caller's profile and rejects non-admins. A caller
// without a profile is not an admin.
func requireAdmin(ctx context.Context, users user.Repository, principal user.Principal) (user.User, error) {
	if !principal.Authenticated() {
		return user.User{}, ErrUnauthorized
	}

	profile, exists, err := users.GetByID(ctx, principal.UserID)
	if err != nil {
		return user.User{}, fmt.Errorf("load caller profile: %w", err)
	}
	if !exists || !profile.IsAdmin {
		return user.User{}, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return profile, nil
}

func isAdmin(ctx context.Context, users user.Repository, principal user.Principal) (bool, error) {
	if !principal.Authenticated() {
		return false, nil
	}
	profile, exists, err := users.GetByID(ctx, principal.UserID)
	if err != nil {
		return false, fmt.Errorf("load caller profile: %w", err)
	}
	return exists && profile.IsAdmin, nil
}

// weekFinal reports whether week has games and every one is calculated.
// Until then other users' picks for the week stay private.
func weekFinal(ctx context.Context, games game.Repository, week int) (bool, error) {
	items, err := games.ListByWeek(ctx, week)
	if err != nil {
		return false, fmt.Errorf("list games for week %d: %w", week, err)
	}
	if len(items) == 0 {
		return false, nil
	}
	for _, g := range items {
		if !g.Calculated() {
			return false, nil
		}
	}
	return true, nil
}
