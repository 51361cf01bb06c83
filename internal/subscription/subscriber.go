package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/svanholten/letterbox/internal/email"
	"github.com/svanholten/letterbox/internal/errorz"
)

// Status is the lifecycle state of a subscriber.
type Status string

const (
	// StatusPendingConfirmation means the subscriber signed up but has not
	// yet proven control of their email address.
	StatusPendingConfirmation Status = "pending_confirmation"
	// StatusConfirmed means the subscriber followed the confirmation link.
	StatusConfirmed Status = "confirmed"
)

// NewSubscriber is a subscription request that passed validation but has not
// been persisted yet. Construct via ParseNewSubscriber.
type NewSubscriber struct {
	Name  Name
	Email email.Address
}

// ParseNewSubscriber validates the raw name and email address. If one or both
// are invalid it returns an errorz.InvalidInput detailing every failed field.
func ParseNewSubscriber(rawName, rawEmail string) (NewSubscriber, error) {
	var errs errorz.InvalidInput

	name, err := ParseName(rawName)
	if err != nil {
		errs = append(errs, errorz.Keyed{Key: "name", Err: err})
	}

	addr, err := email.ParseAddress(rawEmail)
	if err != nil {
		errs = append(errs, errorz.Keyed{Key: "email", Err: err})
	}

	if len(errs) > 0 {
		return NewSubscriber{}, errs
	}

	return NewSubscriber{
		Name:  name,
		Email: addr,
	}, nil
}

// Subscriber contains the data for a newsletter subscriber.
type Subscriber struct {
	ID           uuid.UUID
	Email        email.Address
	Name         Name
	SubscribedAt time.Time
	Status       Status
}
