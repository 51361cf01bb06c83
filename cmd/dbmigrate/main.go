package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/svanholten/letterbox/assets"
	"github.com/svanholten/letterbox/internal"
	"github.com/svanholten/letterbox/internal/db"
	"github.com/svanholten/letterbox/internal/migrate"
)

const helpText = `Usage: dbmigrate [postgres_url]`

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, helpText)
		os.Exit(1)
	}

	dsn := os.Args[1]

	sqlDB, err := db.OpenPostgres(dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*60)
	defer cancel()

	meta := migrate.Metadata{
		AppVersion: internal.BuildRevision,
		Timestamp:  internal.BuildRevisionTime,
	}

	migrations, err := migrate.RunFS(ctx, sqlDB, assets.MigrationFS, meta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	for _, migration := range migrations {
		fmt.Printf("%d: %s\n", migration.Sequence, migration.Filename)
	}
}
