// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"

	"scholarsite/internal/docstore"
	"scholarsite/internal/models"
)

// Service exposes one set of named operations per content kind.
type Service struct {
	Publications *ListRepository[models.Publication]
	Gallery      *ListRepository[models.GalleryItem]
	Profiles     *ListRepository[models.ProfileInfo]
	Events       *ListRepository[models.Event]
	Feedback     *ListRepository[models.FeedbackMessage]

	Portfolio   *SingletonRepository[models.PortfolioContent]
	Cooperation *SingletonRepository[models.CooperationContent]
	Foundation  *SingletonRepository[models.FoundationContent]
	Contact     *SingletonRepository[models.ContactContent]

	store docstore.Store
}

// NewService wires a repository per kind over store, sharing uploader.
func NewService(store docstore.Store, uploader *Uploader) *Service {
	return &Service{
		Publications: NewListRepository(PublicationKind, store, uploader),
		Gallery:      NewListRepository(GalleryKind, store, uploader),
		Profiles:     NewListRepository(ProfileKind, store, uploader),
		Events:       NewListRepository(EventKind, store, uploader),
		Feedback:     NewListRepository(FeedbackKind, store, uploader),
		Portfolio:    NewSingletonRepository(PortfolioKind, store),
		Cooperation:  NewSingletonRepository(CooperationKind, store),
		Foundation:   NewSingletonRepository(FoundationKind, store),
		Contact:      NewSingletonRepository(ContactKind, store),
		store:        store,
	}
}

// Ping checks that the document store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return storeError("ping", err)
	}
	return nil
}

// Publications, newest year first.

func (s *Service) GetPublications(ctx context.Context) ([]models.Publication, error) {
	return s.Publications.List(ctx, ListOptions{})
}

func (s *Service) GetPublication(ctx context.Context, id string) (models.Publication, error) {
	return s.Publications.Get(ctx, id)
}

func (s *Service) AddPublication(ctx context.Context, p models.Publication) (string, error) {
	return s.Publications.Add(ctx, p, nil)
}

func (s *Service) UpdatePublication(ctx context.Context, id string, patch Patch) (models.Publication, error) {
	return s.Publications.Update(ctx, id, patch, nil)
}

func (s *Service) DeletePublication(ctx context.Context, id string) error {
	return s.Publications.Remove(ctx, id)
}

// Gallery, by display order. A blank category lists every item.

func (s *Service) GetGalleryItems(ctx context.Context, category models.Category) ([]models.GalleryItem, error) {
	return s.Gallery.List(ctx, ListOptions{FilterField: "category", FilterValue: string(category)})
}

func (s *Service) GetGalleryItem(ctx context.Context, id string) (models.GalleryItem, error) {
	return s.Gallery.Get(ctx, id)
}

func (s *Service) AddGalleryItem(ctx context.Context, item models.GalleryItem, image *File) (string, error) {
	return s.Gallery.Add(ctx, item, image)
}

func (s *Service) UpdateGalleryItem(ctx context.Context, id string, patch Patch, image *File) (models.GalleryItem, error) {
	return s.Gallery.Update(ctx, id, patch, image)
}

func (s *Service) DeleteGalleryItem(ctx context.Context, id string) error {
	return s.Gallery.Remove(ctx, id)
}

// Profile. The site shows the earliest-created profile document.

func (s *Service) GetProfile(ctx context.Context) (models.ProfileInfo, error) {
	profiles, err := s.Profiles.List(ctx, ListOptions{Limit: 1})
	if err != nil {
		return models.ProfileInfo{}, err
	}
	if len(profiles) == 0 {
		return models.ProfileInfo{}, ErrNotFound
	}
	return profiles[0], nil
}

func (s *Service) AddProfile(ctx context.Context, p models.ProfileInfo, image *File) (string, error) {
	return s.Profiles.Add(ctx, p, image)
}

func (s *Service) UpdateProfile(ctx context.Context, id string, patch Patch, image *File) (models.ProfileInfo, error) {
	return s.Profiles.Update(ctx, id, patch, image)
}

func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	return s.Profiles.Remove(ctx, id)
}

// Events, latest start date first.

func (s *Service) GetEvents(ctx context.Context) ([]models.Event, error) {
	return s.Events.List(ctx, ListOptions{})
}

func (s *Service) GetEvent(ctx context.Context, id string) (models.Event, error) {
	return s.Events.Get(ctx, id)
}

func (s *Service) AddEvent(ctx context.Context, e models.Event, image *File) (string, error) {
	return s.Events.Add(ctx, e, image)
}

func (s *Service) UpdateEvent(ctx context.Context, id string, patch Patch, image *File) (models.Event, error) {
	return s.Events.Update(ctx, id, patch, image)
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	return s.Events.Remove(ctx, id)
}

// Feedback, newest first.

func (s *Service) GetFeedback(ctx context.Context, unreadOnly bool) ([]models.FeedbackMessage, error) {
	opts := ListOptions{}
	if unreadOnly {
		opts.FilterField, opts.FilterValue = "isRead", false
	}
	return s.Feedback.List(ctx, opts)
}

// AddFeedback stores a contact form message. The message always starts unread.
func (s *Service) AddFeedback(ctx context.Context, f models.FeedbackMessage) (string, error) {
	f.IsRead = false
	return s.Feedback.Add(ctx, f, nil)
}

func (s *Service) MarkFeedbackRead(ctx context.Context, id string, read bool) (models.FeedbackMessage, error) {
	return s.Feedback.Update(ctx, id, Patch{"isRead": read}, nil)
}

func (s *Service) DeleteFeedback(ctx context.Context, id string) error {
	return s.Feedback.Remove(ctx, id)
}

// Page content singletons.

func (s *Service) GetPortfolioContent(ctx context.Context) (models.PortfolioContent, error) {
	return s.Portfolio.Get(ctx)
}

func (s *Service) UpdatePortfolioContent(ctx context.Context, c models.PortfolioContent) (models.PortfolioContent, error) {
	return s.Portfolio.Upsert(ctx, c)
}

func (s *Service) GetCooperationContent(ctx context.Context) (models.CooperationContent, error) {
	return s.Cooperation.Get(ctx)
}

func (s *Service) UpdateCooperationContent(ctx context.Context, c models.CooperationContent) (models.CooperationContent, error) {
	return s.Cooperation.Upsert(ctx, c)
}

func (s *Service) GetFoundationContent(ctx context.Context) (models.FoundationContent, error) {
	return s.Foundation.Get(ctx)
}

func (s *Service) UpdateFoundationContent(ctx context.Context, c models.FoundationContent) (models.FoundationContent, error) {
	return s.Foundation.Upsert(ctx, c)
}

func (s *Service) GetContactContent(ctx context.Context) (models.ContactContent, error) {
	return s.Contact.Get(ctx)
}

func (s *Service) UpdateContactContent(ctx context.Context, c models.ContactContent) (models.ContactContent, error) {
	return s.Contact.Upsert(ctx, c)
}
