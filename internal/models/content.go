// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the content types stored in the document store and
// served by the public API. JSON field names are the stored field names.
package models

import "time"

// Meta carries the store-managed fields shared by every document.
type Meta struct {
	ID        string     `json:"id,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Publication is a journal or conference paper.
type Publication struct {
	Meta
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Journal  string `json:"journal"`
	Year     int    `json:"year"`
	DOI      string `json:"doi,omitempty"`
	Abstract string `json:"abstract,omitempty"`
	Link     string `json:"link,omitempty"`
}

// Category labels a gallery item.
type Category string

const (
	CategoryResearch    Category = "research"
	CategoryConferences Category = "conferences"
	CategoryLaboratory  Category = "laboratory"
	CategoryAwards      Category = "awards"
	CategoryStudents    Category = "students"
	CategoryGeneral     Category = "general"
)

// Categories lists the gallery categories in display order.
var Categories = []Category{
	CategoryResearch, CategoryConferences, CategoryLaboratory,
	CategoryAwards, CategoryStudents, CategoryGeneral,
}

// Valid reports whether c is one of the known gallery categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// GalleryItem is a captioned image shown in the public gallery.
type GalleryItem struct {
	Meta
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"imageUrl"`
	Category    Category `json:"category"`
	Order       int      `json:"order"`
}

// Education is one degree on the profile.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Description string `json:"description,omitempty"`
}

// Experience is one position on the profile.
type Experience struct {
	Position    string `json:"position"`
	Institution string `json:"institution"`
	StartYear   string `json:"startYear"`
	EndYear     string `json:"endYear"`
	Description string `json:"description,omitempty"`
}

// Award is one distinction on the profile.
type Award struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Year         string `json:"year"`
	Description  string `json:"description,omitempty"`
}

// ProfileInfo is the biography shown on the about page.
type ProfileInfo struct {
	Meta
	Name       string       `json:"name"`
	Title      string       `json:"title"`
	Bio        string       `json:"bio"`
	Education  []Education  `json:"education"`
	Experience []Experience `json:"experience"`
	Awards     []Award      `json:"awards"`
	ImageURL   string       `json:"imageUrl,omitempty"`
}

// Event is a talk, conference or other dated happening.
type Event struct {
	Meta
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Location    string     `json:"location,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Link        string     `json:"link,omitempty"`
	Category    string     `json:"category,omitempty"`
}

// FeedbackMessage is a message sent through the public contact form.
type FeedbackMessage struct {
	Meta
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	IsRead  bool   `json:"isRead"`
}
