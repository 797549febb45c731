package authz

import (
	"context"
	"errors"
	"time"

	"bazaar/backend/internal/website/domain"
)

var (
	ErrSubscriptionInactive = errors.New("website subscription is inactive")
	ErrSubscriptionExpired  = errors.New("website subscription has expired")
)

// Deactivator persists a subscription lapse the moment it is observed.
type Deactivator interface {
	SetSubscriptionInactive(ctx context.Context, websiteID string) error
}

// CheckSubscription gates mutating operations on the website's subscription
// state. An already-inactive subscription is refused without touching storage.
// An active subscription whose next payment date has passed is flipped
// inactive first and then refused, so later checks take the cheap path.
func CheckSubscription(ctx context.Context, store Deactivator, w *domain.Website, now time.Time) error {
	if !w.Subscription.Active {
		return ErrSubscriptionInactive
	}
	if w.Subscription.Lapsed(now) {
		if err := store.SetSubscriptionInactive(ctx, w.ID); err != nil {
			return err
		}
		w.Subscription.Active = false
		return ErrSubscriptionExpired
	}
	return nil
}
