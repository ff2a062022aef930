// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Health reports the status of the site's dependencies.
type Health struct {
	checks map[string]Pinger
}

// NewHealth returns a health handler over the named checks. Nil checks
// are reported as "disabled".
func NewHealth(checks map[string]Pinger) *Health {
	return &Health{checks: checks}
}

// ServeHTTP answers 200 when every configured dependency responds and 503
// otherwise.
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := map[string]string{}
	for name, check := range h.checks {
		if check == nil {
			report[name] = "disabled"
			continue
		}
		if err := check.Ping(ctx); err != nil {
			report[name] = "error: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": report})
}
