package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/drivefinance/backend/src/model"
)

func seedUser(t *testing.T, db *sql.DB, role string) int64 {
	t.Helper()
	u := &model.User{
		Username: fmt.Sprintf("driver-%s-%d", role, time.Now().UnixNano()),
		Email:    fmt.Sprintf("driver-%s-%d@example.com", role, time.Now().UnixNano()),
		Password: "not-a-real-hash",
		Role:     role,
	}
	require.NoError(t, u.CreateUser(db))
	return u.ID
}

func TestIsPremium(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEntitlementService()

	future := time.Now().Add(30 * 24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	t.Run("user without a subscription is not premium", func(t *testing.T) {
		userID := seedUser(t, db, "user")
		premium, err := svc.IsPremium(userID)
		require.NoError(t, err)
		assert.False(t, premium)
	})

	t.Run("active premium subscription qualifies", func(t *testing.T) {
		userID := seedUser(t, db, "user")
		require.NoError(t, model.UpsertSubscription(db, userID, model.SubscriptionPremium, "Premium", 2990, &future))
		premium, err := svc.IsPremium(userID)
		require.NoError(t, err)
		assert.True(t, premium)
	})

	t.Run("active pro subscription qualifies", func(t *testing.T) {
		userID := seedUser(t, db, "user")
		require.NoError(t, model.UpsertSubscription(db, userID, model.SubscriptionPro, "Pro", 1990, &future))
		premium, err := svc.IsPremium(userID)
		require.NoError(t, err)
		assert.True(t, premium)
	})

	t.Run("expired subscription does not qualify", func(t *testing.T) {
		userID := seedUser(t, db, "user")
		require.NoError(t, model.UpsertSubscription(db, userID, model.SubscriptionPremium, "Premium", 2990, &past))
		premium, err := svc.IsPremium(userID)
		require.NoError(t, err)
		assert.False(t, premium)
	})

	t.Run("free subscription does not qualify", func(t *testing.T) {
		userID := seedUser(t, db, "user")
		require.NoError(t, model.UpsertSubscription(db, userID, model.SubscriptionFree, "", 0, nil))
		premium, err := svc.IsPremium(userID)
		require.NoError(t, err)
		assert.False(t, premium)
	})

	t.Run("admins are always premium", func(t *testing.T) {
		userID := seedUser(t, db, "admin")
		premium, err := svc.IsPremium(userID)
		require.NoError(t, err)
		assert.True(t, premium)
	})

	t.Run("unknown user is an error", func(t *testing.T) {
		_, err := svc.IsPremium(424242)
		assert.Error(t, err)
	})
}
