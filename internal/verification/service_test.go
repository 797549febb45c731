package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"bazaar/backend/internal/verification/domain"
)

type mockRepo struct {
	codes map[string]*domain.Code
}

func newMockRepo() *mockRepo {
	return &mockRepo{codes: make(map[string]*domain.Code)}
}

func key(email string, purpose domain.Purpose) string {
	return email + "|" + string(purpose)
}

func (m *mockRepo) Get(_ context.Context, email string, purpose domain.Purpose) (*domain.Code, error) {
	return m.codes[key(email, purpose)], nil
}

func (m *mockRepo) Upsert(_ context.Context, c *domain.Code) error {
	m.codes[key(c.Email, c.Purpose)] = c
	return nil
}

func (m *mockRepo) Delete(_ context.Context, email string, purpose domain.Purpose) error {
	delete(m.codes, key(email, purpose))
	return nil
}

func (m *mockRepo) MarkVerified(_ context.Context, id string) error {
	for _, c := range m.codes {
		if c.ID == id {
			c.Verified = true
		}
	}
	return nil
}

type mockMailer struct {
	sent []string
}

func (m *mockMailer) Send(_ context.Context, to, _, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

func TestIssueStoresAndMailsCode(t *testing.T) {
	repo := newMockRepo()
	mailer := &mockMailer{}
	svc := NewService(repo, mailer)

	if err := svc.Issue(context.Background(), "a@example.com", domain.PurposeVerifyEmail); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	c := repo.codes[key("a@example.com", domain.PurposeVerifyEmail)]
	if c == nil {
		t.Fatal("expected code to be stored")
	}
	if len(c.Code) != 6 {
		t.Errorf("code length = %d, want 6", len(c.Code))
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "a@example.com" {
		t.Errorf("mailer.sent = %v, want one mail to a@example.com", mailer.sent)
	}
}

func TestIssueRateLimitsResend(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockMailer{})

	now := time.Now().UTC()
	svc.now = func() time.Time { return now }

	if err := svc.Issue(context.Background(), "a@example.com", domain.PurposeVerifyEmail); err != nil {
		t.Fatalf("first Issue() error = %v", err)
	}

	svc.now = func() time.Time { return now.Add(20 * time.Second) }
	err := svc.Issue(context.Background(), "a@example.com", domain.PurposeVerifyEmail)

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("second Issue() error = %v, want RateLimitError", err)
	}
	if got := int(rateErr.Retry.Seconds()); got != 40 {
		t.Errorf("Retry = %ds, want 40s", got)
	}
}

func TestIssueAllowsResendAfterWindow(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockMailer{})

	now := time.Now().UTC()
	svc.now = func() time.Time { return now }
	if err := svc.Issue(context.Background(), "a@example.com", domain.PurposeVerifyEmail); err != nil {
		t.Fatalf("first Issue() error = %v", err)
	}

	svc.now = func() time.Time { return now.Add(61 * time.Second) }
	if err := svc.Issue(context.Background(), "a@example.com", domain.PurposeVerifyEmail); err != nil {
		t.Errorf("Issue() after window error = %v, want nil", err)
	}
}

func TestConfirm(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockMailer{})

	now := time.Now().UTC()
	svc.now = func() time.Time { return now }
	if err := svc.Issue(context.Background(), "a@example.com", domain.PurposeWebsiteDelete); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	stored := repo.codes[key("a@example.com", domain.PurposeWebsiteDelete)]

	t.Run("wrong code", func(t *testing.T) {
		err := svc.Confirm(context.Background(), "a@example.com", domain.PurposeWebsiteDelete, "000000x")
		if !errors.Is(err, ErrCodeMismatch) {
			t.Errorf("Confirm() error = %v, want ErrCodeMismatch", err)
		}
	})

	t.Run("wrong purpose", func(t *testing.T) {
		err := svc.Confirm(context.Background(), "a@example.com", domain.PurposeWebsiteTransfer, stored.Code)
		if !errors.Is(err, ErrCodeNotFound) {
			t.Errorf("Confirm() error = %v, want ErrCodeNotFound", err)
		}
	})

	t.Run("success marks verified", func(t *testing.T) {
		if err := svc.Confirm(context.Background(), "a@example.com", domain.PurposeWebsiteDelete, stored.Code); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if !stored.Verified {
			t.Error("expected code to be marked verified")
		}
	})

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return now.Add(2 * time.Minute) }
		err := svc.Confirm(context.Background(), "a@example.com", domain.PurposeWebsiteDelete, stored.Code)
		if !errors.Is(err, ErrCodeExpired) {
			t.Errorf("Confirm() error = %v, want ErrCodeExpired", err)
		}
	})
}

func TestConsumeDeletesCode(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockMailer{})

	if err := svc.Issue(context.Background(), "a@example.com", domain.PurposeWebsiteTransfer); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	stored := repo.codes[key("a@example.com", domain.PurposeWebsiteTransfer)]

	if err := svc.Consume(context.Background(), "a@example.com", domain.PurposeWebsiteTransfer, stored.Code); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if repo.codes[key("a@example.com", domain.PurposeWebsiteTransfer)] != nil {
		t.Error("expected code to be deleted after consume")
	}
	err := svc.Consume(context.Background(), "a@example.com", domain.PurposeWebsiteTransfer, stored.Code)
	if !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("second Consume() error = %v, want ErrCodeNotFound", err)
	}
}

func TestRedeem(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockMailer{})

	now := time.Now().UTC()
	svc.now = func() time.Time { return now }
	if err := svc.Issue(context.Background(), "a@example.com", domain.PurposeResetPassword); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	stored := repo.codes[key("a@example.com", domain.PurposeResetPassword)]

	t.Run("before confirm", func(t *testing.T) {
		err := svc.Redeem(context.Background(), "a@example.com", domain.PurposeResetPassword)
		if !errors.Is(err, ErrCodeNotConfirmed) {
			t.Errorf("Redeem() error = %v, want ErrCodeNotConfirmed", err)
		}
	})

	t.Run("after confirm deletes code", func(t *testing.T) {
		if err := svc.Confirm(context.Background(), "a@example.com", domain.PurposeResetPassword, stored.Code); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if err := svc.Redeem(context.Background(), "a@example.com", domain.PurposeResetPassword); err != nil {
			t.Fatalf("Redeem() error = %v", err)
		}
		if repo.codes[key("a@example.com", domain.PurposeResetPassword)] != nil {
			t.Error("expected code to be deleted after redeem")
		}
	})

	t.Run("replay", func(t *testing.T) {
		err := svc.Redeem(context.Background(), "a@example.com", domain.PurposeResetPassword)
		if !errors.Is(err, ErrCodeNotFound) {
			t.Errorf("second Redeem() error = %v, want ErrCodeNotFound", err)
		}
	})
}

func TestRedeemExpired(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockMailer{})

	now := time.Now().UTC()
	svc.now = func() time.Time { return now }
	if err := svc.Issue(context.Background(), "a@example.com", domain.PurposeResetPassword); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	stored := repo.codes[key("a@example.com", domain.PurposeResetPassword)]
	if err := svc.Confirm(context.Background(), "a@example.com", domain.PurposeResetPassword, stored.Code); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	err := svc.Redeem(context.Background(), "a@example.com", domain.PurposeResetPassword)
	if !errors.Is(err, ErrCodeExpired) {
		t.Errorf("Redeem() error = %v, want ErrCodeExpired", err)
	}
}
