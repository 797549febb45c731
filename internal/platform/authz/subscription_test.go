package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"bazaar/backend/internal/website/domain"
)

type mockDeactivator struct {
	flipped []string
	err     error
}

func (m *mockDeactivator) SetSubscriptionInactive(_ context.Context, websiteID string) error {
	if m.err != nil {
		return m.err
	}
	m.flipped = append(m.flipped, websiteID)
	return nil
}

func activeWebsite(nextPayment time.Time) *domain.Website {
	return &domain.Website{
		ID: "site-1",
		Subscription: domain.Subscription{
			Price:       domain.DefaultPrice,
			Active:      true,
			NextPayment: nextPayment,
		},
	}
}

func TestCheckSubscriptionActive(t *testing.T) {
	now := time.Now().UTC()
	store := &mockDeactivator{}

	err := CheckSubscription(context.Background(), store, activeWebsite(now.Add(time.Hour)), now)
	if err != nil {
		t.Fatalf("CheckSubscription() error = %v, want nil", err)
	}
	if len(store.flipped) != 0 {
		t.Errorf("flipped = %v, want no writes", store.flipped)
	}
}

func TestCheckSubscriptionInactiveSkipsStorage(t *testing.T) {
	now := time.Now().UTC()
	store := &mockDeactivator{}
	w := activeWebsite(now.Add(time.Hour))
	w.Subscription.Active = false

	err := CheckSubscription(context.Background(), store, w, now)
	if !errors.Is(err, ErrSubscriptionInactive) {
		t.Fatalf("CheckSubscription() error = %v, want ErrSubscriptionInactive", err)
	}
	if len(store.flipped) != 0 {
		t.Errorf("flipped = %v, want no writes for already-inactive", store.flipped)
	}
}

func TestCheckSubscriptionLapsedFlipsThenRefuses(t *testing.T) {
	now := time.Now().UTC()
	store := &mockDeactivator{}
	w := activeWebsite(now.Add(-time.Minute))

	err := CheckSubscription(context.Background(), store, w, now)
	if !errors.Is(err, ErrSubscriptionExpired) {
		t.Fatalf("CheckSubscription() error = %v, want ErrSubscriptionExpired", err)
	}
	if len(store.flipped) != 1 || store.flipped[0] != "site-1" {
		t.Errorf("flipped = %v, want [site-1]", store.flipped)
	}
	if w.Subscription.Active {
		t.Error("expected in-memory subscription to be flipped inactive")
	}

	// A second check takes the inactive path without another write.
	err = CheckSubscription(context.Background(), store, w, now)
	if !errors.Is(err, ErrSubscriptionInactive) {
		t.Fatalf("second CheckSubscription() error = %v, want ErrSubscriptionInactive", err)
	}
	if len(store.flipped) != 1 {
		t.Errorf("flipped = %v, want exactly one write", store.flipped)
	}
}

func TestCheckSubscriptionStorageFailure(t *testing.T) {
	now := time.Now().UTC()
	store := &mockDeactivator{err: errors.New("connection reset")}
	w := activeWebsite(now.Add(-time.Minute))

	err := CheckSubscription(context.Background(), store, w, now)
	if err == nil || errors.Is(err, ErrSubscriptionExpired) {
		t.Fatalf("CheckSubscription() error = %v, want storage error", err)
	}
	if !w.Subscription.Active {
		t.Error("subscription must stay active in memory when the flip fails")
	}
}
