// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import "scholarsite/internal/models"

// SingletonID is the fixed id of every page-content document.
const SingletonID = "main"

// Kind describes how one content type is stored.
type Kind[T any] struct {
	Collection string
	Singleton  bool
	// IDField is the JSON field that receives the document id on read.
	IDField string
	// ImageField is the JSON field that receives the URL of an uploaded
	// file. Empty for kinds without images.
	ImageField string
	// OrderField and OrderDesc give the default list order.
	OrderField string
	OrderDesc  bool
	// Default returns the empty value documents are decoded onto. For
	// singletons it is also what Get returns when nothing is stored.
	Default func() T
	// Validate checks (and may normalize) a complete entity.
	Validate func(*T) error
}

func zero[T any]() T {
	var v T
	return v
}

var (
	PublicationKind = Kind[models.Publication]{
		Collection: "publications",
		IDField:    "id",
		OrderField: "year",
		OrderDesc:  true,
		Default:    zero[models.Publication],
		Validate:   validatePublication,
	}

	GalleryKind = Kind[models.GalleryItem]{
		Collection: "gallery",
		IDField:    "id",
		ImageField: "imageUrl",
		OrderField: "order",
		Default:    zero[models.GalleryItem],
		Validate:   validateGalleryItem,
	}

	ProfileKind = Kind[models.ProfileInfo]{
		Collection: "profile",
		IDField:    "id",
		ImageField: "imageUrl",
		OrderField: "createdAt",
		Default: func() models.ProfileInfo {
			return models.ProfileInfo{
				Education:  []models.Education{},
				Experience: []models.Experience{},
				Awards:     []models.Award{},
			}
		},
		Validate: validateProfile,
	}

	EventKind = Kind[models.Event]{
		Collection: "events",
		IDField:    "id",
		ImageField: "imageUrl",
		OrderField: "startDate",
		OrderDesc:  true,
		Default:    zero[models.Event],
		Validate:   validateEvent,
	}

	FeedbackKind = Kind[models.FeedbackMessage]{
		Collection: "feedback",
		IDField:    "id",
		OrderField: "createdAt",
		OrderDesc:  true,
		Default:    zero[models.FeedbackMessage],
		Validate:   validateFeedback,
	}

	PortfolioKind = Kind[models.PortfolioContent]{
		Collection: "portfolioContent",
		Singleton:  true,
		IDField:    "id",
		Default:    models.NewPortfolioContent,
		Validate:   validatePortfolio,
	}

	CooperationKind = Kind[models.CooperationContent]{
		Collection: "cooperationContent",
		Singleton:  true,
		IDField:    "id",
		Default:    models.NewCooperationContent,
		Validate:   validateCooperation,
	}

	FoundationKind = Kind[models.FoundationContent]{
		Collection: "foundationContent",
		Singleton:  true,
		IDField:    "id",
		Default:    models.NewFoundationContent,
		Validate:   validateFoundation,
	}

	ContactKind = Kind[models.ContactContent]{
		Collection: "contactContent",
		Singleton:  true,
		IDField:    "id",
		Default:    models.NewContactContent,
		Validate:   validateContact,
	}
)
