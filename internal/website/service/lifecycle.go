package service

import (
	"context"

	userdomain "bazaar/backend/internal/user/domain"
	verdomain "bazaar/backend/internal/verification/domain"
	"bazaar/backend/internal/website/domain"
)

// RenewSubscription marks the subscription paid for another billing period
// starting now and reactivates it if it had lapsed.
func (s *Service) RenewSubscription(ctx context.Context, w *domain.Website, actorID string) error {
	now := s.now().UTC()
	w.Subscription.LastPayment = now
	w.Subscription.NextPayment = now.Add(domain.BillingPeriod)
	w.Subscription.Active = true
	if err := s.websites.UpdateSubscription(ctx, w.ID, w.Subscription); err != nil {
		return err
	}
	return s.recordUpdate(ctx, w.ID, actorID, "subscription renewed")
}

// RequestDeletion mails the owner a confirmation code for deleting the website.
func (s *Service) RequestDeletion(ctx context.Context, w *domain.Website) error {
	owner, err := s.owner(ctx, w)
	if err != nil {
		return err
	}
	return s.codes.Issue(ctx, owner.Email, verdomain.PurposeWebsiteDelete)
}

// ConfirmDeletion deletes the website after validating the emailed code, and
// revokes the owner's seller role.
func (s *Service) ConfirmDeletion(ctx context.Context, w *domain.Website, code string) error {
	owner, err := s.owner(ctx, w)
	if err != nil {
		return err
	}
	if err := s.codes.Consume(ctx, owner.Email, verdomain.PurposeWebsiteDelete, code); err != nil {
		return err
	}
	if err := s.websites.Delete(ctx, w.ID); err != nil {
		return err
	}
	return s.roles.RemoveRole(ctx, owner.ID, userdomain.RoleSeller)
}

// RequestTransfer mails the owner a confirmation code for transferring the
// website to another user.
func (s *Service) RequestTransfer(ctx context.Context, w *domain.Website) error {
	owner, err := s.owner(ctx, w)
	if err != nil {
		return err
	}
	return s.codes.Issue(ctx, owner.Email, verdomain.PurposeWebsiteTransfer)
}

// ConfirmTransfer hands the website to the user identified by newOwnerEmail
// after validating the emailed code. The seller role moves with the website.
func (s *Service) ConfirmTransfer(ctx context.Context, w *domain.Website, code, newOwnerEmail string) error {
	owner, err := s.owner(ctx, w)
	if err != nil {
		return err
	}
	newOwner, err := s.users.GetByEmail(ctx, newOwnerEmail)
	if err != nil {
		return err
	}
	if newOwner == nil {
		return ErrUserNotFound
	}
	alreadyOwns, err := s.websites.GetBySeller(ctx, newOwner.ID)
	if err != nil {
		return err
	}
	if alreadyOwns != nil {
		return ErrAlreadyOwnsWebsite
	}
	if err := s.codes.Consume(ctx, owner.Email, verdomain.PurposeWebsiteTransfer, code); err != nil {
		return err
	}
	if err := s.websites.UpdateSeller(ctx, w.ID, newOwner.ID); err != nil {
		return err
	}
	w.SellerID = newOwner.ID
	if err := s.roles.AddRole(ctx, newOwner.ID, userdomain.RoleSeller); err != nil {
		return err
	}
	if err := s.roles.RemoveRole(ctx, owner.ID, userdomain.RoleSeller); err != nil {
		return err
	}
	return s.recordUpdate(ctx, w.ID, newOwner.ID, "ownership transferred")
}

func (s *Service) owner(ctx context.Context, w *domain.Website) (*userdomain.User, error) {
	owner, err := s.users.GetByID(ctx, w.SellerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}
	return owner, nil
}
