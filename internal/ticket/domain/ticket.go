// Package domain holds support tickets raised by buyers against a storefront.
package domain

import (
	"errors"
	"time"
)

type Status string

const (
	StatusOpen     Status = "open"
	StatusAnswered Status = "answered"
	StatusClosed   Status = "closed"
)

type Ticket struct {
	ID        string
	WebsiteID string
	AuthorID  string
	Subject   string
	Body      string
	Answer    string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Ticket) Validate() error {
	if t.WebsiteID == "" {
		return errors.New("website id is required")
	}
	if t.AuthorID == "" {
		return errors.New("author id is required")
	}
	if t.Subject == "" {
		return errors.New("subject is required")
	}
	if t.Body == "" {
		return errors.New("body is required")
	}
	return nil
}
