// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scholarsite/internal/cache"
	"scholarsite/internal/content"
	"scholarsite/internal/middleware"
	"scholarsite/internal/models"
)

// Admin serves the authenticated content management API.
type Admin struct {
	content       *content.Service
	cache         *cache.PageCache
	maxImageBytes int64
}

// NewAdmin creates the admin handler group. pageCache may be nil.
func NewAdmin(svc *content.Service, pageCache *cache.PageCache, maxImageBytes int64) *Admin {
	if maxImageBytes <= 0 {
		maxImageBytes = 10 << 20
	}
	return &Admin{content: svc, cache: pageCache, maxImageBytes: maxImageBytes}
}

// changed drops cached public responses after a successful write.
func (a *Admin) changed(ctx context.Context, kind, op, id string) {
	a.cache.InvalidateAll(ctx)
	slog.Info("content changed", "kind", kind, "op", op, "id", id)
}

// decodeStrict decodes data into v, rejecting unknown fields.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &content.ValidationError{Fields: map[string]string{"data": err.Error()}}
	}
	return nil
}

// Generic CRUD handlers shared by every list kind.

func listHandler[T any](list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(items))
	}
}

func getHandler[T any](get func(context.Context, string) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (a *Admin) createHandler(kind string, create func(context.Context, *writeRequest) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := readWrite(w, r, a.maxImageBytes)
		if err != nil {
			writeError(w, r, err)
			return
		}
		id, err := create(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		a.changed(r.Context(), kind, "create", id)
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

func createWith[T any](add func(context.Context, T, *content.File) (string, error)) func(context.Context, *writeRequest) (string, error) {
	return func(ctx context.Context, req *writeRequest) (string, error) {
		var draft T
		if err := decodeStrict(req.data, &draft); err != nil {
			return "", err
		}
		return add(ctx, draft, req.image)
	}
}

// updateHandler applies a partial update (PATCH).
func updateHandler[T any](a *Admin, kind string, update func(context.Context, string, content.Patch, *content.File) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		req, err := readWrite(w, r, a.maxImageBytes)
		if err != nil {
			writeError(w, r, err)
			return
		}

		patch := content.Patch{}
		if len(bytes.TrimSpace(req.data)) > 0 {
			if err := json.Unmarshal(req.data, &patch); err != nil {
				writeError(w, r, &content.ValidationError{Fields: map[string]string{"data": err.Error()}})
				return
			}
		}

		item, err := update(r.Context(), id, patch, req.image)
		if err != nil {
			writeError(w, r, err)
			return
		}
		a.changed(r.Context(), kind, "update", id)
		writeJSON(w, http.StatusOK, item)
	}
}

// replaceHandler overwrites a whole document (PUT).
func replaceHandler[T any](a *Admin, kind string, replace func(context.Context, string, T, *content.File) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		req, err := readWrite(w, r, a.maxImageBytes)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var entity T
		if err := decodeStrict(req.data, &entity); err != nil {
			writeError(w, r, err)
			return
		}

		item, err := replace(r.Context(), id, entity, req.image)
		if err != nil {
			writeError(w, r, err)
			return
		}
		a.changed(r.Context(), kind, "replace", id)
		writeJSON(w, http.StatusOK, item)
	}
}

func (a *Admin) deleteHandler(kind string, remove func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := remove(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		a.changed(r.Context(), kind, "delete", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// Routes mounts the admin CRUD endpoints on r. Editors manage the content
// lists; the feedback inbox and the static pages need the admin role.
func (a *Admin) Routes(r chi.Router) {
	svc := a.content

	r.Route("/publications", func(r chi.Router) {
		r.Get("/", listHandler(svc.GetPublications))
		r.Post("/", a.createHandler("publication", createWith(svc.Publications.Add)))
		r.Get("/{id}", getHandler(svc.GetPublication))
		r.Patch("/{id}", updateHandler(a, "publication", svc.Publications.Update))
		r.Put("/{id}", replaceHandler(a, "publication", svc.Publications.Replace))
		r.Delete("/{id}", a.deleteHandler("publication", svc.DeletePublication))
	})

	r.Route("/gallery", func(r chi.Router) {
		r.Get("/", listHandler(func(ctx context.Context) ([]models.GalleryItem, error) {
			return svc.GetGalleryItems(ctx, "")
		}))
		r.Post("/", a.createHandler("gallery", createWith(svc.AddGalleryItem)))
		r.Get("/{id}", getHandler(svc.GetGalleryItem))
		r.Patch("/{id}", updateHandler(a, "gallery", svc.UpdateGalleryItem))
		r.Put("/{id}", replaceHandler(a, "gallery", svc.Gallery.Replace))
		r.Delete("/{id}", a.deleteHandler("gallery", svc.DeleteGalleryItem))
	})

	r.Route("/profile", func(r chi.Router) {
		r.Get("/", listHandler(func(ctx context.Context) ([]models.ProfileInfo, error) {
			return svc.Profiles.List(ctx, content.ListOptions{})
		}))
		r.Post("/", a.createHandler("profile", createWith(svc.AddProfile)))
		r.Get("/{id}", getHandler(svc.Profiles.Get))
		r.Patch("/{id}", updateHandler(a, "profile", svc.UpdateProfile))
		r.Put("/{id}", replaceHandler(a, "profile", svc.Profiles.Replace))
		r.Delete("/{id}", a.deleteHandler("profile", svc.DeleteProfile))
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", listHandler(svc.GetEvents))
		r.Post("/", a.createHandler("event", createWith(svc.AddEvent)))
		r.Get("/{id}", getHandler(svc.GetEvent))
		r.Patch("/{id}", updateHandler(a, "event", svc.UpdateEvent))
		r.Put("/{id}", replaceHandler(a, "event", svc.Events.Replace))
		r.Delete("/{id}", a.deleteHandler("event", svc.DeleteEvent))
	})

	r.Route("/feedback", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/", a.FeedbackList)
		r.Get("/{id}", getHandler(svc.Feedback.Get))
		r.Patch("/{id}/read", a.FeedbackMarkRead)
		r.Delete("/{id}", a.deleteHandler("feedback", svc.DeleteFeedback))
	})

	r.With(middleware.RequireAdmin).Put("/pages/{page}", a.PageUpdate)
}

// FeedbackList lists messages newest first; ?unread=true keeps only
// unread ones.
func (a *Admin) FeedbackList(w http.ResponseWriter, r *http.Request) {
	unread := r.URL.Query().Get("unread") == "true"
	items, err := a.content.GetFeedback(r.Context(), unread)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// FeedbackMarkRead sets the read flag; the body may carry {"isRead": false}
// to mark a message unread again.
func (a *Admin) FeedbackMarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body := struct {
		IsRead *bool `json:"isRead"`
	}{}
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, &content.ValidationError{Fields: map[string]string{"body": err.Error()}})
		return
	}
	read := body.IsRead == nil || *body.IsRead

	msg, err := a.content.MarkFeedbackRead(r.Context(), id, read)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// PageUpdate writes one of the singleton page documents.
func (a *Admin) PageUpdate(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)

	var (
		out any
		err error
	)
	switch page {
	case pagePortfolio:
		out, err = upsertPage(r, content.PortfolioKind, a.content.UpdatePortfolioContent)
	case pageCooperation:
		out, err = upsertPage(r, content.CooperationKind, a.content.UpdateCooperationContent)
	case pageFoundation:
		out, err = upsertPage(r, content.FoundationKind, a.content.UpdateFoundationContent)
	case pageContact:
		out, err = upsertPage(r, content.ContactKind, a.content.UpdateContactContent)
	default:
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	a.changed(r.Context(), page, "upsert", "main")
	writeJSON(w, http.StatusOK, out)
}

// upsertPage decodes the body onto the kind's defaults, so the request
// replaces the whole page and omitted lists come back empty.
func upsertPage[T any](r *http.Request, kind content.Kind[T], update func(context.Context, T) (T, error)) (T, error) {
	c := kind.Default()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return c, bodyError(err)
	}
	return update(r.Context(), c)
}
