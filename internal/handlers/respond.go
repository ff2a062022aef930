// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the site. Handlers
// are grouped by concern (public, admin, auth, health) and receive their
// dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"scholarsite/internal/auth"
	"scholarsite/internal/content"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		writeRaw(w, http.StatusInternalServerError, []byte(`{"error":"internal server error"}`))
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps the content and auth error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, errTooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, content.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrAuthFailed):
		writeMessage(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, content.ErrUploadFailed):
		slog.Error("upload failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusBadGateway, "image upload failed")
	case errors.Is(err, content.ErrStoreUnavailable):
		slog.Error("content store unavailable", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "content store unavailable")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a single JSON value from the request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &content.ValidationError{Fields: map[string]string{"body": "invalid JSON: " + err.Error()}}
	}
	return nil
}
