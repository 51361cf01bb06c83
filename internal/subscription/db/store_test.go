package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/svanholten/letterbox/internal/errorz"
	"github.com/svanholten/letterbox/internal/subscription"
	"github.com/svanholten/letterbox/internal/subscription/db"
)

func newStoreTest(t *testing.T) (*db.Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	t.Cleanup(func() {
		mockDB.Close()
	})

	return db.New(mockDB), mock
}

func testSubscriber() subscription.Subscriber {
	return subscription.Subscriber{
		ID:           uuid.New(),
		Email:        "ursula@example.com",
		Name:         "Ursula Le Guin",
		SubscribedAt: time.Date(2024, 3, 10, 11, 30, 0, 0, time.UTC),
		Status:       subscription.StatusPendingConfirmation,
	}
}

func Test_Tx_Register(t *testing.T) {
	t.Run("ok, subscriber and token committed together", func(t *testing.T) {
		store, mock := newStoreTest(t)
		sub := testSubscriber()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO subscriptions").
			WithArgs(sub.ID, "ursula@example.com", "Ursula Le Guin", sub.SubscribedAt, "pending_confirmation").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO subscription_tokens").
			WithArgs("abcdefghijABCDEFGHIJ01234", sub.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := store.BeginTx(context.Background())
		if err != nil {
			t.Fatalf("failed to begin tx: %v", err)
		}

		if err := tx.CreateSubscriber(&sub); err != nil {
			t.Fatalf("failed to create subscriber: %v", err)
		}

		if err := tx.CreateToken(&subscription.SubscriptionToken{
			SubscriberID: sub.ID,
			Token:        "abcdefghijABCDEFGHIJ01234",
		}); err != nil {
			t.Fatalf("failed to create token: %v", err)
		}

		if err := tx.Commit(); err != nil {
			t.Fatalf("failed to commit: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("fail, duplicate email maps to constraint violation", func(t *testing.T) {
		store, mock := newStoreTest(t)
		sub := testSubscriber()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO subscriptions").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "subscriptions_email_key"})
		mock.ExpectRollback()

		tx, err := store.BeginTx(context.Background())
		if err != nil {
			t.Fatalf("failed to begin tx: %v", err)
		}

		err = tx.CreateSubscriber(&sub)
		if !errors.Is(err, errorz.ErrConstraintViolated) {
			t.Fatalf("expected errorz.ErrConstraintViolated, got %v", err)
		}

		if err := tx.Rollback(); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("fail, token insert failure rolls back the subscriber", func(t *testing.T) {
		store, mock := newStoreTest(t)
		sub := testSubscriber()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO subscriptions").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO subscription_tokens").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "subscription_tokens_pkey"})
		mock.ExpectRollback()

		tx, err := store.BeginTx(context.Background())
		if err != nil {
			t.Fatalf("failed to begin tx: %v", err)
		}

		if err := tx.CreateSubscriber(&sub); err != nil {
			t.Fatalf("failed to create subscriber: %v", err)
		}

		err = tx.CreateToken(&subscription.SubscriptionToken{
			SubscriberID: sub.ID,
			Token:        "abcdefghijABCDEFGHIJ01234",
		})
		if !errors.Is(err, errorz.ErrConstraintViolated) {
			t.Fatalf("expected errorz.ErrConstraintViolated, got %v", err)
		}

		if err := tx.Rollback(); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("fail, zero uuid never reaches the database", func(t *testing.T) {
		store, mock := newStoreTest(t)
		sub := testSubscriber()
		sub.ID = uuid.Nil

		mock.ExpectBegin()
		mock.ExpectRollback()

		tx, err := store.BeginTx(context.Background())
		if err != nil {
			t.Fatalf("failed to begin tx: %v", err)
		}

		if err := tx.CreateSubscriber(&sub); !errors.Is(err, errorz.ErrConstraintViolated) {
			t.Fatalf("expected errorz.ErrConstraintViolated, got %v", err)
		}

		if err := tx.CreateToken(&subscription.SubscriptionToken{
			SubscriberID: uuid.Nil,
			Token:        "abcdefghijABCDEFGHIJ01234",
		}); !errors.Is(err, errorz.ErrConstraintViolated) {
			t.Fatalf("expected errorz.ErrConstraintViolated, got %v", err)
		}

		if err := tx.Rollback(); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func Test_Tx_ConsumeToken(t *testing.T) {
	t.Run("ok, delete returns the subscriber id", func(t *testing.T) {
		store, mock := newStoreTest(t)
		subID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM subscription_tokens").
			WithArgs("abcdefghijABCDEFGHIJ01234").
			WillReturnRows(sqlmock.NewRows([]string{"subscriber_id"}).AddRow(subID.String()))
		mock.ExpectExec("UPDATE subscriptions SET status").
			WithArgs("confirmed", subID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := store.BeginTx(context.Background())
		if err != nil {
			t.Fatalf("failed to begin tx: %v", err)
		}

		got, err := tx.ConsumeToken("abcdefghijABCDEFGHIJ01234")
		if err != nil {
			t.Fatalf("failed to consume token: %v", err)
		}

		if got != subID {
			t.Errorf("got subscriber id %s, want %s", got, subID)
		}

		if err := tx.ConfirmSubscriber(got); err != nil {
			t.Fatalf("failed to confirm subscriber: %v", err)
		}

		if err := tx.Commit(); err != nil {
			t.Fatalf("failed to commit: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("fail, unknown token maps to not found", func(t *testing.T) {
		store, mock := newStoreTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM subscription_tokens").
			WithArgs("abcdefghijABCDEFGHIJ01234").
			WillReturnRows(sqlmock.NewRows([]string{"subscriber_id"}))
		mock.ExpectRollback()

		tx, err := store.BeginTx(context.Background())
		if err != nil {
			t.Fatalf("failed to begin tx: %v", err)
		}

		_, err = tx.ConsumeToken("abcdefghijABCDEFGHIJ01234")
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Fatalf("expected errorz.ErrNotFound, got %v", err)
		}

		if err := tx.Rollback(); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func Test_Tx_ConfirmSubscriber(t *testing.T) {
	t.Run("fail, missing subscriber maps to not found", func(t *testing.T) {
		store, mock := newStoreTest(t)
		subID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE subscriptions SET status").
			WithArgs("confirmed", subID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		tx, err := store.BeginTx(context.Background())
		if err != nil {
			t.Fatalf("failed to begin tx: %v", err)
		}

		err = tx.ConfirmSubscriber(subID)
		if !errors.Is(err, errorz.ErrNotFound) {
			t.Fatalf("expected errorz.ErrNotFound, got %v", err)
		}

		if err := tx.Rollback(); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
