package auth

import (
	"context"
	"errors"
	"fmt"

	"lingopost-bot/internal/database"
)

// MaxFreeAdmins is the number of administrator seats available without a
// subscription. The 16th self-promotion is redirected to the paid offer.
const MaxFreeAdmins = 15

// AdminCheckerInterface allows mocking the checker in tests.
type AdminCheckerInterface interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// AdminChecker decides admin status from the fixed configuration list and
// the persisted per-user admin flag.
type AdminChecker struct {
	users     database.UserRepository
	staticIDs map[int64]struct{}
}

// NewAdminChecker creates a new AdminChecker.
func NewAdminChecker(users database.UserRepository, staticIDs []int64) (*AdminChecker, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository cannot be nil")
	}
	ids := make(map[int64]struct{}, len(staticIDs))
	for _, id := range staticIDs {
		ids[id] = struct{}{}
	}
	return &AdminChecker{users: users, staticIDs: ids}, nil
}

// IsAdmin reports whether the user is a configured administrator or has been
// promoted. An unregistered user is simply not an admin.
func (ac *AdminChecker) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if _, ok := ac.staticIDs[userID]; ok {
		return true, nil
	}
	user, err := ac.users.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up user %d: %w", userID, err)
	}
	return user.IsAdmin, nil
}

// HasFreeSeat reports whether another admin can be promoted under the cap.
func (ac *AdminChecker) HasFreeSeat(ctx context.Context) (bool, error) {
	count, err := ac.users.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	return count < MaxFreeAdmins, nil
}
