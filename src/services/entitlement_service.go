package services

import (
	"fmt"
	"time"

	"github.com/username/drivefinance/backend/src/database"
	"github.com/username/drivefinance/backend/src/model"
)

type entitlementServiceImpl struct {
	now func() time.Time
}

func NewEntitlementService() EntitlementService {
	return &entitlementServiceImpl{now: time.Now}
}

// IsPremium reports whether the user may access premium features. Admins
// always qualify; everyone else needs an active pro or premium subscription.
func (s *entitlementServiceImpl) IsPremium(userID int64) (bool, error) {
	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	if user.Role == "admin" {
		return true, nil
	}

	sub, err := model.GetSubscriptionByUserID(database.DB, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get subscription for user %d: %w", userID, err)
	}
	if sub == nil {
		return false, nil
	}
	return sub.IsActive(s.now()), nil
}
