// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"scholarsite/internal/cache"
	"scholarsite/internal/content"
	"scholarsite/internal/markdown"
	"scholarsite/internal/models"
)

// Public serves the read-only site API and the contact form.
type Public struct {
	content *content.Service
	cache   *cache.PageCache
}

// NewPublic creates the public handler group. pageCache may be nil.
func NewPublic(svc *content.Service, pageCache *cache.PageCache) *Public {
	return &Public{content: svc, cache: pageCache}
}

// publicationView adds the rendered abstract.
type publicationView struct {
	models.Publication
	AbstractHTML string `json:"abstractHtml,omitempty"`
}

type subsectionView struct {
	models.Subsection
	ContentHTML string `json:"contentHtml"`
}

type sectionView struct {
	models.Section
	Subsections []subsectionView `json:"subsections"`
}

type portfolioView struct {
	Sections []sectionView `json:"sections"`
}

// cached answers from the response cache when it can, otherwise runs load
// and caches its JSON. Errors are never cached.
func (p *Public) cached(w http.ResponseWriter, r *http.Request, key string, load func(ctx context.Context) (any, error)) {
	ctx := r.Context()
	if body, ok := p.cache.Get(ctx, key); ok {
		w.Header().Set("X-Cache", "HIT")
		writeRaw(w, http.StatusOK, body)
		return
	}

	v, err := load(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response failed", "key", key, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.cache.Set(ctx, key, body)
	w.Header().Set("X-Cache", "MISS")
	writeRaw(w, http.StatusOK, body)
}

// Publications lists publications, newest year first.
func (p *Public) Publications(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, r.URL.Path, func(ctx context.Context) (any, error) {
		pubs, err := p.content.GetPublications(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]publicationView, 0, len(pubs))
		for _, pub := range pubs {
			out = append(out, publicationView{Publication: pub, AbstractHTML: renderMarkdown(pub.Abstract)})
		}
		return out, nil
	})
}

// Gallery lists gallery items by display order, optionally narrowed by
// the category query parameter.
func (p *Public) Gallery(w http.ResponseWriter, r *http.Request) {
	category := models.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		writeError(w, r, &content.ValidationError{Fields: map[string]string{"category": "unknown category"}})
		return
	}

	key := r.URL.Path
	if category != "" {
		key += "?" + url.Values{"category": {string(category)}}.Encode()
	}
	p.cached(w, r, key, func(ctx context.Context) (any, error) {
		items, err := p.content.GetGalleryItems(ctx, category)
		if err != nil {
			return nil, err
		}
		return nonNil(items), nil
	})
}

// GalleryItem returns one gallery item.
func (p *Public) GalleryItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.cached(w, r, r.URL.Path, func(ctx context.Context) (any, error) {
		return p.content.GetGalleryItem(ctx, id)
	})
}

// Profile returns the professor's profile.
func (p *Public) Profile(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, r.URL.Path, func(ctx context.Context) (any, error) {
		return p.content.GetProfile(ctx)
	})
}

// Events lists events, latest start date first.
func (p *Public) Events(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, r.URL.Path, func(ctx context.Context) (any, error) {
		events, err := p.content.GetEvents(ctx)
		if err != nil {
			return nil, err
		}
		return nonNil(events), nil
	})
}

// Event returns one event.
func (p *Public) Event(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.cached(w, r, r.URL.Path, func(ctx context.Context) (any, error) {
		return p.content.GetEvent(ctx, id)
	})
}

// Page returns one of the singleton page documents. Pages never 404 once
// routed: an unwritten page is served as its empty default.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")

	var load func(ctx context.Context) (any, error)
	switch page {
	case pagePortfolio:
		load = func(ctx context.Context) (any, error) {
			c, err := p.content.GetPortfolioContent(ctx)
			if err != nil {
				return nil, err
			}
			return renderPortfolio(c), nil
		}
	case pageCooperation:
		load = func(ctx context.Context) (any, error) { return p.content.GetCooperationContent(ctx) }
	case pageFoundation:
		load = func(ctx context.Context) (any, error) { return p.content.GetFoundationContent(ctx) }
	case pageContact:
		load = func(ctx context.Context) (any, error) { return p.content.GetContactContent(ctx) }
	default:
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}

	p.cached(w, r, r.URL.Path, load)
}

// SubmitFeedback stores a contact form message.
func (p *Public) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFeedbackBytes)

	var msg models.FeedbackMessage
	if err := decodeJSON(r, &msg); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := p.content.AddFeedback(r.Context(), msg)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("feedback received", "id", id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

const maxFeedbackBytes = 64 << 10

// Singleton page names as they appear in routes.
const (
	pagePortfolio   = "portfolio"
	pageCooperation = "cooperation"
	pageFoundation  = "foundation"
	pageContact     = "contact"
)

func renderPortfolio(c models.PortfolioContent) portfolioView {
	out := portfolioView{Sections: make([]sectionView, 0, len(c.Sections))}
	for _, s := range c.Sections {
		sv := sectionView{Section: s, Subsections: make([]subsectionView, 0, len(s.Subsections))}
		for _, sub := range s.Subsections {
			sv.Subsections = append(sv.Subsections, subsectionView{Subsection: sub, ContentHTML: renderMarkdown(sub.Content)})
		}
		out.Sections = append(out.Sections, sv)
	}
	return out
}

// renderMarkdown falls back to no HTML when rendering fails; the source
// text is still in the response.
func renderMarkdown(src string) string {
	html, err := markdown.ToHTML(src)
	if err != nil {
		slog.Warn("markdown render failed", "error", err)
		return ""
	}
	return html
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
