// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router wires the route table and middleware chains of the site.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scholarsite/internal/handlers"
	"scholarsite/internal/middleware"
)

// Deps carries everything the route table mounts.
type Deps struct {
	Sessions handlers.SessionStore
	Public   *handlers.Public
	Admin    *handlers.Admin
	Auth     *handlers.Auth
	Health   http.Handler

	// LoginLimiter and FeedbackLimiter guard the unauthenticated write
	// endpoints. Either may be nil.
	LoginLimiter    *middleware.RateLimiter
	FeedbackLimiter *middleware.RateLimiter

	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool
}

// New returns the configured router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)

	r.Method(http.MethodGet, "/health", d.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public read API.
		r.Get("/publications", d.Public.Publications)
		r.Get("/gallery", d.Public.Gallery)
		r.Get("/gallery/{id}", d.Public.GalleryItem)
		r.Get("/profile", d.Public.Profile)
		r.Get("/events", d.Public.Events)
		r.Get("/events/{id}", d.Public.Event)
		r.Get("/pages/{page}", d.Public.Page)

		r.With(limit(d.FeedbackLimiter)).Post("/feedback", d.Public.SubmitFeedback)

		// Everything below carries a session and CSRF protection.
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewCSRF(d.SecureCookies))
			r.Use(middleware.LoadSession(d.Sessions))

			r.Route("/auth", func(r chi.Router) {
				r.With(limit(d.LoginLimiter)).Post("/login", d.Auth.Login)
				r.Post("/logout", d.Auth.Logout)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAuth)
					r.Get("/me", d.Auth.Me)
					r.With(limit(d.LoginLimiter)).Post("/2fa/verify", d.Auth.TOTPVerify)
					r.With(middleware.Require2FA).Post("/2fa/setup", d.Auth.TOTPSetup)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.Require2FA)
				d.Admin.Routes(r)
			})
		})
	})

	return r
}

func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}
