// Package verification issues and confirms short-lived email codes used by
// registration, password reset, website transfer, and website deletion.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bazaar/backend/internal/verification/domain"
	"bazaar/backend/internal/verification/repository"
)

var (
	ErrCodeNotFound     = errors.New("verification code not found")
	ErrCodeExpired      = errors.New("verification code expired")
	ErrCodeMismatch     = errors.New("verification code does not match")
	ErrCodeNotConfirmed = errors.New("verification code has not been confirmed")
)

// RateLimitError reports how long the caller must wait before a new code can
// be sent to the same address for the same purpose.
type RateLimitError struct {
	Retry time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("a code was sent recently, try again in %d seconds", int(e.Retry.Seconds()))
}

// Mailer delivers verification codes. The server wires a real transport in
// production and the log mailer in development.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outbound mail to the log instead of delivering it.
type LogMailer struct {
	Logger zerolog.Logger
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.Logger.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("outbound mail")
	return nil
}

type Service struct {
	repo   repository.Repository
	mailer Mailer
	now    func() time.Time
}

func NewService(repo repository.Repository, mailer Mailer) *Service {
	return &Service{repo: repo, mailer: mailer, now: time.Now}
}

// Issue mints a fresh code for (email, purpose), persists it, and mails it.
// If a code was sent within the last minute it returns a RateLimitError
// carrying the remaining wait instead.
func (s *Service) Issue(ctx context.Context, email string, purpose domain.Purpose) error {
	now := s.now().UTC()
	existing, err := s.repo.Get(ctx, email, purpose)
	if err != nil {
		return err
	}
	if existing != nil {
		if wait := existing.CreatedAt.Add(domain.TTL).Sub(now); wait > 0 {
			return &RateLimitError{Retry: wait}
		}
	}
	code, err := generateCode()
	if err != nil {
		return err
	}
	c := &domain.Code{
		ID:        uuid.NewString(),
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(domain.TTL),
		CreatedAt: now,
	}
	if err := s.repo.Upsert(ctx, c); err != nil {
		return err
	}
	return s.mailer.Send(ctx, email, subjectFor(purpose), "Your verification code is "+code)
}

// Confirm checks the submitted code and marks it verified so a follow-up
// operation can rely on it.
func (s *Service) Confirm(ctx context.Context, email string, purpose domain.Purpose, code string) error {
	c, err := s.repo.Get(ctx, email, purpose)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCodeNotFound
	}
	if c.Expired(s.now().UTC()) {
		return ErrCodeExpired
	}
	if c.Code != code {
		return ErrCodeMismatch
	}
	return s.repo.MarkVerified(ctx, c.ID)
}

// Consume checks the submitted code and deletes it on success, so it cannot
// confirm a second operation.
func (s *Service) Consume(ctx context.Context, email string, purpose domain.Purpose, code string) error {
	if err := s.Confirm(ctx, email, purpose, code); err != nil {
		return err
	}
	return s.repo.Delete(ctx, email, purpose)
}

// Redeem finalizes a two-step confirmation: the live code for (email,
// purpose) must have been accepted by an earlier Confirm call. On success the
// code is deleted so it cannot authorize a second operation.
func (s *Service) Redeem(ctx context.Context, email string, purpose domain.Purpose) error {
	c, err := s.repo.Get(ctx, email, purpose)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCodeNotFound
	}
	if c.Expired(s.now().UTC()) {
		return ErrCodeExpired
	}
	if !c.Verified {
		return ErrCodeNotConfirmed
	}
	return s.repo.Delete(ctx, email, purpose)
}

func subjectFor(purpose domain.Purpose) string {
	switch purpose {
	case domain.PurposeAddSupport:
		return "Confirm support enrollment"
	case domain.PurposeWebsiteDelete:
		return "Confirm website deletion"
	case domain.PurposeWebsiteTransfer:
		return "Confirm website transfer"
	case domain.PurposeResetPassword:
		return "Password reset request"
	default:
		return "Verify your email address"
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
