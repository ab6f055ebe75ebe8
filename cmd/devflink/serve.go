// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"devflink/internal/auth"
	"devflink/internal/cache"
	"devflink/internal/config"
	"devflink/internal/content"
	"devflink/internal/handlers"
	"devflink/internal/intake"
	"devflink/internal/middleware"
	"devflink/internal/notify"
	"devflink/internal/router"
	"devflink/internal/session"
	"devflink/internal/storage"
	"devflink/internal/store"
)

// shutdownTimeout bounds how long active requests may take to drain.
const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, c *config.Config) error {
	slog.Info("configuration loaded",
		"env", c.Env,
		"addr", c.Addr(),
		"backend", c.StoreBackend,
	)

	backend, closeBackend, err := openBackend(c)
	if err != nil {
		return err
	}
	defer closeBackend()

	users := store.NewUserStore(backend)
	posts := store.NewPostStore(backend)
	jobs := store.NewJobStore(backend)
	contacts := store.NewSubmissionStore(backend)
	applications := store.NewApplicationStore(backend)

	if err := bootstrapAdmin(ctx, c, users); err != nil {
		return err
	}

	// Valkey holds revoked token ids. Without it, logout only clears the
	// cookie and tokens stay valid until they expire.
	var valkey *redis.Client
	if c.ValkeyEnabled() {
		valkey, err = cache.ConnectValkey(ctx, c.ValkeyHost, c.ValkeyPort, c.ValkeyPassword)
		if err != nil {
			return err
		}
		defer valkey.Close()
	} else {
		slog.Warn("valkey not configured, token revocation disabled")
	}

	secure := !c.IsDev()
	sessions := session.NewManager(c.SessionSecret, c.SessionTTL, secure, valkey)

	publisher, closePublisher, err := newPublisher(c)
	if err != nil {
		return err
	}
	defer closePublisher()

	storageClient, err := storage.New(c.S3)
	if err != nil {
		return fmt.Errorf("init s3 storage: %w", err)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", c.S3.Endpoint, "bucket", c.S3.Bucket)
	} else {
		slog.Warn("s3 storage not configured, uploads disabled")
	}

	articles := content.New(c.ContentDir)

	formLimiter := middleware.NewRateLimiter(5, time.Minute).TrustProxies(c.TrustedProxies...)
	defer formLimiter.Stop()
	loginLimiter := middleware.NewRateLimiter(10, 15*time.Minute).TrustProxies(c.TrustedProxies...)
	defer loginLimiter.Stop()

	r := router.New(sessions, router.Handlers{
		Public: handlers.NewPublic(posts, jobs, articles),
		Forms:  handlers.NewForms(intake.New(contacts, applications, jobs, publisher), storageClient),
		Auth:   handlers.NewAuth(auth.NewGate(users), sessions),
		Admin:  handlers.NewAdmin(posts, jobs, contacts, applications, articles, storageClient),
	}, router.Options{
		CORSOrigins:  c.CORSOrigins,
		SecureCookie: secure,
		FormLimiter:  formLimiter,
		LoginLimiter: loginLimiter,
	})

	srv := &http.Server{
		Addr:              c.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second, // uploads up to 10 MB
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}

// newPublisher picks where form notifications go: the AMQP queue when
// configured, otherwise straight to the relay, otherwise nowhere.
func newPublisher(c *config.Config) (notify.Publisher, func(), error) {
	switch {
	case c.AMQPURL != "":
		p, err := notify.DialAMQP(c.AMQPURL, c.AMQPQueue)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("notifications via amqp", "queue", c.AMQPQueue)
		return p, func() { p.Close() }, nil
	case c.RelayURL != "":
		slog.Info("notifications via relay", "url", c.RelayURL)
		return notify.NewRelay(c.RelayURL), func() {}, nil
	default:
		slog.Warn("no notification target configured, form events are dropped")
		return notify.Nop{}, func() {}, nil
	}
}
