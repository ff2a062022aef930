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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scholarsite/internal/auth"
	"scholarsite/internal/cache"
	"scholarsite/internal/handlers"
	"scholarsite/internal/middleware"
	"scholarsite/internal/router"
	"scholarsite/internal/session"
)

// Issuer shown in authenticator apps.
const totpIssuer = "Scholarsite"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"docstore", cfg.DocstoreDriver,
		"blobs", cfg.BlobDriver,
	)

	svc, store, err := openContent(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Valkey backs sessions and the public response cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessions := session.NewStore(valkeyClient, secureCookies)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	authSvc := auth.New(store, totpIssuer)
	if ok, err := authSvc.HasUsers(ctx); err != nil {
		slog.Warn("could not check for admin accounts", "error", err)
	} else if !ok {
		slog.Warn("no admin account exists, create one with: scholarsite admin create")
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	loginLimiter := middleware.NewRateLimiter(10, time.Minute).TrustProxies(proxies)
	defer loginLimiter.Stop()
	feedbackLimiter := middleware.NewRateLimiter(5, time.Minute).TrustProxies(proxies)
	defer feedbackLimiter.Stop()

	health := handlers.NewHealth(map[string]handlers.Pinger{
		"docstore": svc,
		"valkey": handlers.PingFunc(func(ctx context.Context) error {
			return valkeyClient.Ping(ctx).Err()
		}),
	})

	r := router.New(router.Deps{
		Sessions:        sessions,
		Public:          handlers.NewPublic(svc, pageCache),
		Admin:           handlers.NewAdmin(svc, pageCache, cfg.UploadMaxBytes),
		Auth:            handlers.NewAuth(authSvc, sessions),
		Health:          health,
		LoginLimiter:    loginLimiter,
		FeedbackLimiter: feedbackLimiter,
		SecureCookies:   secureCookies,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
