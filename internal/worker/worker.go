// Package worker runs the scheduled sweeps: nightly subscription
// deactivation and the special-offer window reconciliation.
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	productdomain "bazaar/backend/internal/product/domain"
)

// SubscriptionStore is the slice of the website repository the sweep needs.
type SubscriptionStore interface {
	DeactivateLapsed(ctx context.Context, now time.Time, limit int) (int64, error)
}

// ProductStore is the slice of the product repository the offer sweep needs.
type ProductStore interface {
	ListWithOffers(ctx context.Context, now time.Time, limit int) ([]*productdomain.Product, error)
	Update(ctx context.Context, p *productdomain.Product) error
}

type Worker struct {
	subscriptions SubscriptionStore
	products      ProductStore
	batchSize     int
	logger        zerolog.Logger
	now           func() time.Time
	cron          *cron.Cron
}

func New(subscriptions SubscriptionStore, products ProductStore, batchSize int, logger zerolog.Logger) *Worker {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Worker{
		subscriptions: subscriptions,
		products:      products,
		batchSize:     batchSize,
		logger:        logger,
		now:           time.Now,
		cron:          cron.New(),
	}
}

// Start registers both sweeps on their cron schedules and starts the
// scheduler in the background.
func (w *Worker) Start(subscriptionSchedule, offerSchedule string) error {
	if _, err := w.cron.AddFunc(subscriptionSchedule, func() {
		if err := w.SweepSubscriptions(context.Background()); err != nil {
			w.logger.Error().Err(err).Msg("subscription sweep failed")
		}
	}); err != nil {
		return err
	}
	if _, err := w.cron.AddFunc(offerSchedule, func() {
		if err := w.SweepOffers(context.Background()); err != nil {
			w.logger.Error().Err(err).Msg("offer sweep failed")
		}
	}); err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (w *Worker) Stop(ctx context.Context) error {
	select {
	case <-w.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepSubscriptions deactivates every lapsed subscription, one batch at a
// time so a large backlog cannot hold a single statement open for minutes.
func (w *Worker) SweepSubscriptions(ctx context.Context) error {
	now := w.now().UTC()
	var total int64
	for {
		n, err := w.subscriptions.DeactivateLapsed(ctx, now, w.batchSize)
		if err != nil {
			return err
		}
		total += n
		if n < int64(w.batchSize) {
			break
		}
	}
	w.logger.Info().Int64("deactivated", total).Msg("subscription sweep complete")
	return nil
}

// SweepOffers reconciles special-offer applied flags with their windows:
// offers whose window has opened are applied, ended ones are retired.
func (w *Worker) SweepOffers(ctx context.Context) error {
	now := w.now().UTC()
	var total int
	for {
		products, err := w.products.ListWithOffers(ctx, now, w.batchSize)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			break
		}
		changed := 0
		for _, p := range products {
			if !p.SweepOffers(now) {
				continue
			}
			if err := w.products.Update(ctx, p); err != nil {
				return err
			}
			changed++
		}
		total += changed
		// A batch that changed nothing cannot shrink the candidate set.
		if changed == 0 || len(products) < w.batchSize {
			break
		}
	}
	w.logger.Info().Int("reconciled", total).Msg("offer sweep complete")
	return nil
}
