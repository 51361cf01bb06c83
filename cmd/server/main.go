package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/svanholten/letterbox/assets"
	"github.com/svanholten/letterbox/internal"
	"github.com/svanholten/letterbox/internal/db"
	"github.com/svanholten/letterbox/internal/email"
	"github.com/svanholten/letterbox/internal/email/mailgun"
	"github.com/svanholten/letterbox/internal/email/postmark"
	"github.com/svanholten/letterbox/internal/email/view"
	"github.com/svanholten/letterbox/internal/migrate"
	"github.com/svanholten/letterbox/internal/subscription"
	subdb "github.com/svanholten/letterbox/internal/subscription/db"
	"github.com/svanholten/letterbox/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	sqlDB, err := db.OpenPostgres(cfg.db.url)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return 1
	}

	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.db.migrate {
		meta := migrate.Metadata{
			AppVersion: internal.BuildRevision,
			Timestamp:  internal.BuildRevisionTime,
		}

		migrations, err := migrate.RunFS(ctx, sqlDB, assets.MigrationFS, meta)
		if err != nil {
			logger.Error("failed to run migrations", "error", err)
			return 1
		}

		logger.Info("ran migrations", "count", len(migrations))
	}

	sender, err := emailSender(cfg, logger)
	if err != nil {
		logger.Error("failed to create email sender", "error", err)
		return 1
	}

	emailer := email.NewService(view.NewFSRenderer(assets.EmailFS), sender, cfg.email.from)

	svc := subscription.NewService(
		subdb.New(sqlDB),
		emailer,
		strings.TrimSuffix(cfg.baseURL.String(), "/"),
	)

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler: web.NewServer(&web.ServerDeps{
			Logger:  logger,
			Service: svc,
		}),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"buildRevision", internal.BuildRevision,
			"buildRevisionTime", internal.BuildRevisionTime,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}

// emailSender creates the email sender for the configured driver.
func emailSender(cfg config, logger *slog.Logger) (email.Sender, error) {
	client := &http.Client{
		Timeout: time.Second * 10,
	}

	switch cfg.email.driver {
	case "log":
		return email.NewLogSender(logger), nil
	case "postmark":
		return postmark.NewSender(client, cfg.email.postmark), nil
	case "mailgun":
		return mailgun.NewSender(client, cfg.email.mailgun), nil
	default:
		return nil, fmt.Errorf("unknown email driver %q", cfg.email.driver)
	}
}
