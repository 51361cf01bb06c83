package db

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/svanholten/letterbox/internal/subscription"
)

type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// CreateSubscriber inserts a subscriber in the database.
// It returns errorz.ErrConstraintViolated if the email address is already
// subscribed.
func (t *Tx) CreateSubscriber(sub *subscription.Subscriber) error {
	return insertSubscriber(t.tx.Exec, sub)
}

// CreateToken inserts a confirmation token in the database.
func (t *Tx) CreateToken(tok *subscription.SubscriptionToken) error {
	return insertToken(t.tx.Exec, tok)
}

// ConsumeToken deletes the token row and returns the subscriber id it
// referenced, as a single atomic statement.
// It returns errorz.ErrNotFound if no such token exists.
func (t *Tx) ConsumeToken(tok subscription.Token) (uuid.UUID, error) {
	return deleteTokenReturningSubscriber(t.tx.QueryRow, tok)
}

// ConfirmSubscriber updates the subscriber status to confirmed.
// It returns errorz.ErrNotFound if no subscriber with the id exists.
func (t *Tx) ConfirmSubscriber(id uuid.UUID) error {
	return updateSubscriberStatus(t.tx.Exec, id, subscription.StatusConfirmed)
}
