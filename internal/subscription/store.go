package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store provides access to the subscription store.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a transaction. If an error occurs on any of the methods, the
// transaction is considered to have failed and should be rolled back.
// Tx is not safe for concurrent use.
type Tx interface {
	Commit() error
	Rollback() error

	// CreateSubscriber inserts a subscriber row.
	// It returns errorz.ErrConstraintViolated if the email address is
	// already subscribed.
	CreateSubscriber(s *Subscriber) error

	// CreateToken inserts a confirmation token row for a subscriber.
	CreateToken(t *SubscriptionToken) error

	// ConsumeToken deletes the token row and returns the id of the
	// subscriber it belonged to. Deletion and lookup are a single atomic
	// statement: of two concurrent calls with the same token exactly one
	// can succeed. It returns errorz.ErrNotFound if the token does not
	// exist (anymore).
	ConsumeToken(t Token) (uuid.UUID, error)

	// ConfirmSubscriber sets the subscriber status to StatusConfirmed.
	// It returns errorz.ErrNotFound if no subscriber with the id exists.
	ConfirmSubscriber(id uuid.UUID) error
}
