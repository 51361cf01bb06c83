package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/svanholten/letterbox/internal/email"
	"github.com/svanholten/letterbox/internal/errorz"
)

// ErrSendConfirmation indicates the confirmation email could not be sent.
// The subscriber was persisted before the send was attempted, so when this
// error is reported the subscriber exists and is pending confirmation.
var ErrSendConfirmation = errors.New("failed to send confirmation email")

// confirmationTemplate is the name of the email template for confirmation links.
const confirmationTemplate = "subscription-confirmation"

// Emailer is used to send templated emails.
type Emailer interface {
	Send(ctx context.Context, template string, to email.Address, data any) error
}

// ConfirmationMail is the data passed to the confirmation email template.
type ConfirmationMail struct {
	Name             Name
	ConfirmationLink string
}

// Service provides the main rules for subscribing to and confirming
// newsletter subscriptions.
type Service struct {
	store   Store
	emailer Emailer
	baseURL string

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

// NewService creates a subscription service. baseURL is the public address
// of this application, it is embedded in confirmation links.
func NewService(store Store, emailer Emailer, baseURL string) *Service {
	return &Service{
		store:   store,
		emailer: emailer,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		NowFunc: time.Now,
	}
}

// SubscribeRequest is the raw, unvalidated input for Subscribe.
type SubscribeRequest struct {
	Name  string
	Email string
}

// Subscribe registers a new pending subscriber and emails them a confirmation
// link:
//   - Validate the raw input, invalid input fails with errorz.InvalidInput.
//   - Insert the subscriber and their confirmation token in one transaction,
//     either both rows are committed or neither is.
//   - Send the confirmation email.
//
// The transaction commits before the email is attempted. If the send fails
// the subscriber stays durably pending and the error wraps
// ErrSendConfirmation.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (uuid.UUID, error) {
	sub, err := ParseNewSubscriber(req.Name, req.Email)
	if err != nil {
		return uuid.Nil, err
	}

	token, err := GenerateToken()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate token: %w", err)
	}

	subscriber := Subscriber{
		ID:           uuid.New(),
		Email:        sub.Email,
		Name:         sub.Name,
		SubscribedAt: s.NowFunc().UTC(),
		Status:       StatusPendingConfirmation,
	}

	err = s.inTx(ctx, func(tx Tx) error {
		if txErr := tx.CreateSubscriber(&subscriber); txErr != nil {
			return fmt.Errorf("failed to insert subscriber: %w", txErr)
		}

		if txErr := tx.CreateToken(&SubscriptionToken{
			SubscriberID: subscriber.ID,
			Token:        token,
		}); txErr != nil {
			return fmt.Errorf("failed to store token: %w", txErr)
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	// The send can fail independently of the committed transaction. That is
	// acceptable: the subscriber can subscribe again to receive a new link.
	err = s.emailer.Send(ctx, confirmationTemplate, subscriber.Email, ConfirmationMail{
		Name:             subscriber.Name,
		ConfirmationLink: s.confirmationLink(token),
	})
	if err != nil {
		return subscriber.ID, errors.Join(ErrSendConfirmation, err)
	}

	return subscriber.ID, nil
}

// Confirm consumes the token and marks the matching subscriber as confirmed.
// It returns errorz.ErrNotFound if the token does not exist, which includes
// tokens that were already used once. Consuming and confirming happen in the
// same transaction, so a consumed token always means a confirmed subscriber.
func (s *Service) Confirm(ctx context.Context, rawToken string) (uuid.UUID, error) {
	token, err := ParseToken(rawToken)
	if err != nil {
		// A string that could never have been issued gets the same
		// treatment as an unknown token.
		return uuid.Nil, fmt.Errorf("%w: %w", errorz.ErrNotFound, err)
	}

	var id uuid.UUID
	err = s.inTx(ctx, func(tx Tx) error {
		var txErr error
		id, txErr = tx.ConsumeToken(token)
		if txErr != nil {
			return fmt.Errorf("failed to consume token: %w", txErr)
		}

		if txErr := tx.ConfirmSubscriber(id); txErr != nil {
			return fmt.Errorf("failed to confirm subscriber: %w", txErr)
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

func (s *Service) confirmationLink(t Token) string {
	return fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", s.baseURL, t)
}

func (s *Service) inTx(ctx context.Context, f func(tx Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = f(tx)
	if err != nil {
		rBackErr := tx.Rollback()
		if rBackErr != nil {
			err = errors.Join(err, rBackErr)
		}
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
