package db

import (
	"context"
	"database/sql"

	"github.com/svanholten/letterbox/internal/subscription"
)

// Store is the Postgres-backed subscription store.
type Store struct {
	db *sql.DB
}

// New creates a new Store on top of the provided connection pool.
func New(db *sql.DB) *Store {
	return &Store{
		db: db,
	}
}

// BeginTx starts a new transaction.
func (s *Store) BeginTx(ctx context.Context) (subscription.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{
		tx: tx,
	}, nil
}
