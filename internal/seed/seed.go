// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seed loads starter content: a placeholder gallery and the
// initial singleton pages. Data is YAML, embedded by default or read from
// a file.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"gopkg.in/yaml.v3"

	"scholarsite/internal/content"
	"scholarsite/internal/models"
)

//go:embed gallery.yaml
var defaultGallery []byte

//go:embed pages.yaml
var defaultPages []byte

// galleryFile is the YAML layout of a gallery seed file.
type galleryFile struct {
	Items []galleryEntry `yaml:"items"`
}

type galleryEntry struct {
	Title       string `yaml:"title"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Order       int    `yaml:"order"`
	ImageURL    string `yaml:"imageUrl"`
	Placeholder string `yaml:"placeholder"`
}

// PlaceholderURL returns a 600x400 placehold.co image showing text.
func PlaceholderURL(text string) string {
	return "https://placehold.co/600x400?" + url.Values{"text": {text}}.Encode()
}

// ParseGallery reads gallery items from YAML.
func ParseGallery(r io.Reader) ([]models.GalleryItem, error) {
	var f galleryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse gallery seed: %w", err)
	}

	items := make([]models.GalleryItem, 0, len(f.Items))
	for _, e := range f.Items {
		img := e.ImageURL
		if img == "" {
			label := e.Placeholder
			if label == "" {
				label = e.Title
			}
			img = PlaceholderURL(label)
		}
		items = append(items, models.GalleryItem{
			Title:       e.Title,
			Description: e.Description,
			ImageURL:    img,
			Category:    models.Category(e.Category),
			Order:       e.Order,
		})
	}
	return items, nil
}

// DefaultGallery returns the embedded placeholder gallery.
func DefaultGallery() []models.GalleryItem {
	items, err := ParseGallery(bytes.NewReader(defaultGallery))
	if err != nil {
		panic(err)
	}
	return items
}

// GalleryResult summarises an import.
type GalleryResult struct {
	Removed int
	Added   int
	Skipped int
}

// Gallery adds items to the gallery. With clear set, every existing item
// is removed first; otherwise items whose title already exists are
// skipped, so running it twice adds nothing.
func Gallery(ctx context.Context, svc *content.Service, items []models.GalleryItem, clear bool) (GalleryResult, error) {
	var res GalleryResult

	existing, err := svc.GetGalleryItems(ctx, "")
	if err != nil {
		return res, err
	}

	titles := make(map[string]bool, len(existing))
	for _, it := range existing {
		if clear {
			if err := svc.DeleteGalleryItem(ctx, it.ID); err != nil {
				return res, err
			}
			res.Removed++
			continue
		}
		titles[it.Title] = true
	}

	for i, it := range items {
		if titles[it.Title] {
			res.Skipped++
			continue
		}
		if _, err := svc.AddGalleryItem(ctx, it, nil); err != nil {
			return res, fmt.Errorf("gallery item %d (%q): %w", i+1, it.Title, err)
		}
		titles[it.Title] = true
		res.Added++
	}

	slog.Info("gallery seeded", "added", res.Added, "skipped", res.Skipped, "removed", res.Removed)
	return res, nil
}

// pagesFile is the YAML layout of the pages seed.
type pagesFile struct {
	Portfolio   map[string]any `yaml:"portfolio"`
	Cooperation map[string]any `yaml:"cooperation"`
	Foundation  map[string]any `yaml:"foundation"`
	Contact     map[string]any `yaml:"contact"`
}

// Pages writes the embedded starting content of every singleton page that
// has never been saved. It returns the names of the pages it wrote.
func Pages(ctx context.Context, svc *content.Service) ([]string, error) {
	var f pagesFile
	if err := yaml.Unmarshal(defaultPages, &f); err != nil {
		return nil, fmt.Errorf("parse pages seed: %w", err)
	}

	var written []string
	steps := []struct {
		name string
		run  func() (bool, error)
	}{
		{"portfolio", func() (bool, error) { return seedPage(ctx, svc.Portfolio, f.Portfolio) }},
		{"cooperation", func() (bool, error) { return seedPage(ctx, svc.Cooperation, f.Cooperation) }},
		{"foundation", func() (bool, error) { return seedPage(ctx, svc.Foundation, f.Foundation) }},
		{"contact", func() (bool, error) { return seedPage(ctx, svc.Contact, f.Contact) }},
	}
	for _, s := range steps {
		ok, err := s.run()
		if err != nil {
			return written, fmt.Errorf("seed %s page: %w", s.name, err)
		}
		if ok {
			written = append(written, s.name)
		}
	}

	slog.Info("pages seeded", "written", written)
	return written, nil
}

func seedPage[T any](ctx context.Context, repo *content.SingletonRepository[T], raw map[string]any) (bool, error) {
	exists, err := repo.Exists(ctx)
	if err != nil || exists {
		return false, err
	}

	// YAML keys match the JSON field names; round-trip through JSON to
	// decode onto the model.
	data, err := json.Marshal(raw)
	if err != nil {
		return false, err
	}
	page := repo.Kind().Default()
	if err := json.Unmarshal(data, &page); err != nil {
		return false, err
	}

	if _, err := repo.Upsert(ctx, page); err != nil {
		return false, err
	}
	return true, nil
}
