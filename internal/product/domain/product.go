// Package domain holds the product aggregate and its special-offer windows.
package domain

import (
	"errors"
	"time"
)

// SpecialOffer is a time-boxed discount attached to a product. The sweep
// worker flips Applied as each window opens and closes.
type SpecialOffer struct {
	Price    int64     `json:"price"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Applied  bool      `json:"applied"`
}

// ActiveAt reports whether the offer window covers now.
func (o SpecialOffer) ActiveAt(now time.Time) bool {
	return !now.Before(o.StartsAt) && now.Before(o.EndsAt)
}

type Product struct {
	ID            string
	WebsiteID     string
	Slug          string
	Title         string
	Category      string
	Price         int64
	Active        bool
	SpecialOffers []SpecialOffer
	CreatedAt     time.Time
}

func (p *Product) Validate() error {
	if p.WebsiteID == "" {
		return errors.New("website id is required")
	}
	if p.Slug == "" {
		return errors.New("slug is required")
	}
	if p.Title == "" {
		return errors.New("title is required")
	}
	if p.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

// EffectivePrice returns the price of the cheapest applied offer whose window
// covers now, and the base price when no offer is live.
func (p *Product) EffectivePrice(now time.Time) int64 {
	price := p.Price
	for _, o := range p.SpecialOffers {
		if o.Applied && o.ActiveAt(now) && o.Price < price {
			price = o.Price
		}
	}
	return price
}

// SweepOffers reconciles Applied with each offer's window at now. It returns
// true when any offer changed state and the product needs persisting.
func (p *Product) SweepOffers(now time.Time) bool {
	changed := false
	for i := range p.SpecialOffers {
		active := p.SpecialOffers[i].ActiveAt(now)
		if p.SpecialOffers[i].Applied != active {
			p.SpecialOffers[i].Applied = active
			changed = true
		}
	}
	return changed
}
