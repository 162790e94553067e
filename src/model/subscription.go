package model

import (
	"database/sql"
	"errors"
	"time"

	"github.com/username/drivefinance/backend/src/models"
)

// Subscription statuses. "pro" and "premium" both unlock premium features;
// they differ only in plan pricing.
const (
	SubscriptionFree      = "free"
	SubscriptionPro       = "pro"
	SubscriptionPremium   = "premium"
	SubscriptionCancelled = "cancelled"
)

type Subscription struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	Status     string       `json:"status"`
	PlanName   string       `json:"plan_name"`
	Price      models.Money `json:"price"`
	StartedAt  time.Time    `json:"started_at"`
	ExpiresAt  sql.NullTime `json:"-"`
	ExpiresStr string       `json:"expires_at,omitempty"`
}

// GetSubscriptionByUserID returns the user's subscription row, or nil if the
// user has never subscribed.
func GetSubscriptionByUserID(db *sql.DB, userID int64) (*Subscription, error) {
	row := db.QueryRow(`
	SELECT id, user_id, status, COALESCE(plan_name, ''), price_cents, started_at, expires_at
	FROM subscriptions WHERE user_id = ?`, userID)

	var s Subscription
	var priceCents int64
	err := row.Scan(&s.ID, &s.UserID, &s.Status, &s.PlanName, &priceCents, &s.StartedAt, &s.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.Price = models.Money(priceCents)
	if s.ExpiresAt.Valid {
		s.ExpiresStr = s.ExpiresAt.Time.Format(time.RFC3339)
	}
	return &s, nil
}

// IsActive reports whether the subscription currently grants its plan.
func (s *Subscription) IsActive(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Status != SubscriptionPro && s.Status != SubscriptionPremium {
		return false
	}
	if s.ExpiresAt.Valid && !s.ExpiresAt.Time.After(now) {
		return false
	}
	return true
}

// UpsertSubscription creates or replaces the user's subscription row.
func UpsertSubscription(db *sql.DB, userID int64, status, planName string, price models.Money, expiresAt *time.Time) error {
	if status != SubscriptionFree && status != SubscriptionPro &&
		status != SubscriptionPremium && status != SubscriptionCancelled {
		return errors.New("invalid subscription status: " + status)
	}
	var expires interface{}
	if expiresAt != nil {
		expires = *expiresAt
	}
	_, err := db.Exec(`
	INSERT INTO subscriptions (user_id, status, plan_name, price_cents, expires_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		status = excluded.status,
		plan_name = excluded.plan_name,
		price_cents = excluded.price_cents,
		expires_at = excluded.expires_at,
		updated_at = CURRENT_TIMESTAMP`,
		userID, status, planName, int64(price), expires)
	return err
}
