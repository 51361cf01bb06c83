package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/svanholten/letterbox/internal/errorz"
	"github.com/svanholten/letterbox/internal/subscription"
)

type execFunc func(query string, params ...any) (sql.Result, error)
type queryRowFunc func(query string, params ...any) *sql.Row

const insertSubscriberQuery = `INSERT INTO subscriptions (id, email, name, subscribed_at, status) VALUES ($1, $2, $3, $4, $5)`

func insertSubscriber(ef execFunc, sub *subscription.Subscriber) error {
	if sub.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	_, err := ef(insertSubscriberQuery,
		sub.ID,
		string(sub.Email),
		string(sub.Name),
		sub.SubscribedAt,
		string(sub.Status),
	)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

const insertTokenQuery = `INSERT INTO subscription_tokens (subscription_token, subscriber_id) VALUES ($1, $2)`

func insertToken(ef execFunc, tok *subscription.SubscriptionToken) error {
	if tok.SubscriberID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	_, err := ef(insertTokenQuery, string(tok.Token), tok.SubscriberID)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

// deleteTokenReturningSubscriber is where the single-use guarantee lives:
// the DELETE and the lookup are one statement, so of two concurrent
// transactions consuming the same token only one sees a row.
const consumeTokenQuery = `DELETE FROM subscription_tokens WHERE subscription_token = $1 RETURNING subscriber_id`

func deleteTokenReturningSubscriber(qrf queryRowFunc, tok subscription.Token) (uuid.UUID, error) {
	var id uuid.UUID
	err := qrf(consumeTokenQuery, string(tok)).Scan(&id)
	if err != nil {
		// No rows deleted means the token does not exist (anymore).
		return uuid.Nil, errorz.MapDBErr(err)
	}

	return id, nil
}

const updateStatusQuery = `UPDATE subscriptions SET status = $1 WHERE id = $2`

func updateSubscriberStatus(ef execFunc, id uuid.UUID, status subscription.Status) error {
	result, err := ef(updateStatusQuery, string(status), id)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if rows == 0 {
		return fmt.Errorf("subscriber not found: %w", errorz.ErrNotFound)
	}

	return nil
}
