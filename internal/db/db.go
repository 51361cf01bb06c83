package db

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// OpenPostgres opens a pool of Postgres connections for the given DSN.
// The pool is capped so a burst of requests cannot exhaust the
// connection limit of a small database instance.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
