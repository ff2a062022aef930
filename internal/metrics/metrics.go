// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholarsite",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled, by route, method and status code.",
	}, []string{"route", "method", "status"})

	// HTTPDuration observes request latency by route pattern and method.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scholarsite",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// StoreOps counts content repository operations by collection, operation
	// and outcome ("ok", "not_found", "invalid", "upload_failed", "unavailable").
	StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholarsite",
		Subsystem: "content",
		Name:      "operations_total",
		Help:      "Content repository operations, by collection, operation and result.",
	}, []string{"collection", "op", "result"})

	// UploadAttempts counts individual blob upload attempts by result.
	UploadAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholarsite",
		Subsystem: "content",
		Name:      "upload_attempts_total",
		Help:      "Blob upload attempts, including retries, by result.",
	}, []string{"result"})

	// OrphanedBlobs counts uploads whose document write failed afterwards.
	OrphanedBlobs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scholarsite",
		Subsystem: "content",
		Name:      "orphaned_blobs_total",
		Help:      "Blobs uploaded whose owning document could not be written.",
	})

	// CacheLookups counts public response cache lookups by result ("hit", "miss").
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholarsite",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Public response cache lookups, by result.",
	}, []string{"result"})

	// LoginAttempts counts sign-in attempts by result.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholarsite",
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Admin sign-in attempts, by result.",
	}, []string{"result"})
)
