// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content is the typed data-access layer over the document store and
// blob storage. Every content kind gets either a ListRepository (many
// independently identified documents) or a SingletonRepository (one page
// document under a fixed id). Repositories hold no state of their own: every
// call is a fresh round trip and concurrent writers are last-write-wins.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"scholarsite/internal/docstore"
	"scholarsite/internal/metrics"
)

// Patch is a partial update keyed by JSON field name.
type Patch map[string]any

// Store-managed fields that callers cannot write.
var managedFields = []string{"createdAt", "updatedAt"}

// ListOptions narrows and orders a List call. Zero OrderField selects the
// kind's default order.
type ListOptions struct {
	FilterField string
	FilterValue any
	OrderField  string
	OrderDesc   bool
	Limit       int
}

// base holds what both repository shapes share.
type base[T any] struct {
	kind     Kind[T]
	store    docstore.Store
	uploader *Uploader
	log      *slog.Logger
	now      func() time.Time
}

func newBase[T any](kind Kind[T], store docstore.Store, uploader *Uploader) base[T] {
	if kind.IDField == "" {
		kind.IDField = "id"
	}
	if uploader == nil {
		uploader = NewUploader(nil, DefaultRetryPolicy, 0)
	}
	return base[T]{
		kind:     kind,
		store:    store,
		uploader: uploader,
		log:      slog.Default().With("kind", kind.Collection),
		now:      time.Now,
	}
}

func (b *base[T]) stamp() time.Time {
	return b.now().UTC().Truncate(time.Second)
}

func (b *base[T]) observe(op string, err error) {
	metrics.StoreOps.WithLabelValues(b.kind.Collection, op, result(err)).Inc()
}

// decode turns a stored document into T, starting from the kind's default
// so absent or null list fields stay empty rather than nil.
func (b *base[T]) decode(doc *docstore.Document) (T, error) {
	v := b.kind.Default()
	fields := maps.Clone(doc.Fields)
	if fields == nil {
		fields = docstore.Fields{}
	}
	maps.DeleteFunc(fields, func(_ string, v any) bool { return v == nil })
	fields[b.kind.IDField] = doc.ID

	raw, err := json.Marshal(fields)
	if err != nil {
		return v, fmt.Errorf("%w: encode %s/%s: %w", ErrStoreUnavailable, b.kind.Collection, doc.ID, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: corrupt document %s/%s: %w", ErrStoreUnavailable, b.kind.Collection, doc.ID, err)
	}
	return v, nil
}

// encode turns an entity into writable fields, dropping nulls, the id and
// the store-managed timestamps.
func (b *base[T]) encode(v T) (docstore.Fields, error) {
	fields, err := docstore.Normalize(v)
	if err != nil {
		return nil, err
	}
	maps.DeleteFunc(fields, func(_ string, v any) bool { return v == nil })
	delete(fields, b.kind.IDField)
	for _, f := range managedFields {
		delete(fields, f)
	}
	return fields, nil
}

func (b *base[T]) validate(v *T) error {
	if b.kind.Validate == nil {
		return nil
	}
	return b.kind.Validate(v)
}

// attach uploads f, if any, and stores its URL in the kind's image field.
// It returns the blob key so a later write failure can be reported.
func (b *base[T]) attach(ctx context.Context, fields docstore.Fields, f *File) (string, error) {
	if f == nil || len(f.Data) == 0 {
		return "", nil
	}
	if b.kind.ImageField == "" {
		return "", invalid("image", b.kind.Collection+" does not accept files")
	}
	key, url, err := b.uploader.Upload(ctx, b.kind.Collection, f)
	if err != nil {
		return "", err
	}
	fields[b.kind.ImageField] = url
	return key, nil
}

// orphaned logs a blob whose owning document could not be written. The blob
// is left in place for manual cleanup.
func (b *base[T]) orphaned(id, key string, err error) {
	if key == "" {
		return
	}
	if id == "" {
		id = "new"
	}
	metrics.OrphanedBlobs.Inc()
	b.log.Error("document write failed after upload, blob left unlinked",
		"id", id, "path", key, "error", err)
}

func (b *base[T]) get(ctx context.Context, id string) (*docstore.Document, error) {
	doc, err := b.store.Get(ctx, b.kind.Collection, id)
	if err != nil {
		return nil, storeError("get "+b.kind.Collection, err)
	}
	return doc, nil
}

// merge writes patch onto the document at id (which exists with the given
// current fields) after validating the merged result, then re-reads it.
func (b *base[T]) merge(ctx context.Context, id string, current docstore.Fields, patch Patch, f *File) (T, error) {
	op := "update " + b.kind.Collection

	fields, err := b.checkPatch(patch)
	if err != nil {
		return zero[T](), fmt.Errorf("%s: %w", op, err)
	}

	merged := maps.Clone(current)
	maps.Copy(merged, fields)
	entity, err := b.decode(&docstore.Document{ID: id, Fields: merged})
	if err != nil {
		return zero[T](), fmt.Errorf("%s: %w", op, err)
	}
	if err := b.validate(&entity); err != nil {
		return zero[T](), fmt.Errorf("%s: %w", op, err)
	}

	// Write the validated (normalized) form of each patched field.
	canonical, err := b.encode(entity)
	if err != nil {
		return zero[T](), fmt.Errorf("%s: %w", op, err)
	}
	for k := range fields {
		fields[k] = canonical[k]
	}

	key, err := b.attach(ctx, fields, f)
	if err != nil {
		return zero[T](), fmt.Errorf("%s: %w", op, err)
	}

	fields["updatedAt"] = b.stamp()
	if err := b.store.Merge(ctx, b.kind.Collection, id, fields); err != nil {
		b.orphaned(id, key, err)
		return zero[T](), storeError(op, err)
	}

	doc, err := b.get(ctx, id)
	if err != nil {
		return zero[T](), err
	}
	if doc == nil {
		return zero[T](), fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return b.decode(doc)
}

// checkPatch drops store-managed keys and rejects unknown fields or values
// of the wrong type by strictly decoding the patch into T.
func (b *base[T]) checkPatch(patch Patch) (docstore.Fields, error) {
	fields, err := docstore.Normalize(patch)
	if err != nil {
		return nil, invalid("patch", err.Error())
	}
	delete(fields, b.kind.IDField)
	for _, f := range managedFields {
		delete(fields, f)
	}

	raw, _ := json.Marshal(fields)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var probe T
	if err := dec.Decode(&probe); err != nil {
		return nil, invalid("patch", err.Error())
	}
	return fields, nil
}

// ListRepository provides CRUD and queries over a list-type kind.
type ListRepository[T any] struct {
	base[T]
}

// NewListRepository returns a repository for kind. uploader may be nil for
// kinds without images.
func NewListRepository[T any](kind Kind[T], store docstore.Store, uploader *Uploader) *ListRepository[T] {
	return &ListRepository[T]{base: newBase(kind, store, uploader)}
}

// Kind returns the descriptor the repository was built with.
func (r *ListRepository[T]) Kind() Kind[T] { return r.kind }

// List returns matching entities. An empty result is an empty slice.
func (r *ListRepository[T]) List(ctx context.Context, opts ListOptions) (out []T, err error) {
	defer func() { r.observe("list", err) }()

	q := docstore.Query{
		EqualsField: opts.FilterField,
		EqualsValue: opts.FilterValue,
		OrderField:  opts.OrderField,
		OrderDesc:   opts.OrderDesc,
		Limit:       opts.Limit,
	}
	if q.OrderField == "" {
		q.OrderField, q.OrderDesc = r.kind.OrderField, r.kind.OrderDesc
	}

	docs, err := r.store.Query(ctx, r.kind.Collection, q)
	if err != nil {
		return nil, storeError("list "+r.kind.Collection, err)
	}

	out = make([]T, 0, len(docs))
	for i := range docs {
		v, err := r.decode(&docs[i])
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", r.kind.Collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Get returns the entity with id or ErrNotFound.
func (r *ListRepository[T]) Get(ctx context.Context, id string) (v T, err error) {
	defer func() { r.observe("get", err) }()

	doc, err := r.get(ctx, id)
	if err != nil {
		return v, err
	}
	if doc == nil {
		return v, fmt.Errorf("get %s %s: %w", r.kind.Collection, id, ErrNotFound)
	}
	return r.decode(doc)
}

// Add validates draft, uploads f into the image field if given, and creates
// a new document stamped with createdAt. It returns the new id. If the
// upload fails nothing is written.
func (r *ListRepository[T]) Add(ctx context.Context, draft T, f *File) (id string, err error) {
	defer func() { r.observe("add", err) }()
	op := "add " + r.kind.Collection

	if err := r.validate(&draft); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	fields, err := r.encode(draft)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, invalid("draft", err.Error()))
	}

	key, err := r.attach(ctx, fields, f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	fields["createdAt"] = r.stamp()
	id, err = r.store.Create(ctx, r.kind.Collection, fields)
	if err != nil {
		r.orphaned("", key, err)
		return "", storeError(op, err)
	}
	return id, nil
}

// Update merges patch onto the existing document, uploading f into the
// image field if given, and stamps updatedAt. Fields absent from patch are
// left untouched. It returns the stored entity after the write.
func (r *ListRepository[T]) Update(ctx context.Context, id string, patch Patch, f *File) (v T, err error) {
	defer func() { r.observe("update", err) }()

	doc, err := r.get(ctx, id)
	if err != nil {
		return v, err
	}
	if doc == nil {
		return v, fmt.Errorf("update %s %s: %w", r.kind.Collection, id, ErrNotFound)
	}
	return r.merge(ctx, id, doc.Fields, patch, f)
}

// Replace overwrites every writable field of the document at id with the
// fields of entity. Optional fields missing from entity are cleared.
func (r *ListRepository[T]) Replace(ctx context.Context, id string, entity T, f *File) (v T, err error) {
	defer func() { r.observe("replace", err) }()

	doc, err := r.get(ctx, id)
	if err != nil {
		return v, err
	}
	if doc == nil {
		return v, fmt.Errorf("replace %s %s: %w", r.kind.Collection, id, ErrNotFound)
	}

	fields, err := r.encode(entity)
	if err != nil {
		return v, fmt.Errorf("replace %s: %w", r.kind.Collection, invalid("entity", err.Error()))
	}
	patch := Patch(fields)
	for k := range doc.Fields {
		if _, ok := fields[k]; !ok && !isManaged(k) {
			patch[k] = nil
		}
	}
	return r.merge(ctx, id, doc.Fields, patch, f)
}

// Remove deletes the document. Blobs it references are not deleted.
// Removing an unknown id succeeds.
func (r *ListRepository[T]) Remove(ctx context.Context, id string) (err error) {
	defer func() { r.observe("remove", err) }()

	if err := r.store.Delete(ctx, r.kind.Collection, id); err != nil {
		return storeError("remove "+r.kind.Collection, err)
	}
	return nil
}

// SingletonRepository provides the one document of a page-content kind.
// Get never reports absence and writes always upsert.
type SingletonRepository[T any] struct {
	base[T]
}

// NewSingletonRepository returns a repository for a singleton kind.
func NewSingletonRepository[T any](kind Kind[T], store docstore.Store) *SingletonRepository[T] {
	return &SingletonRepository[T]{base: newBase(kind, store, nil)}
}

// Kind returns the descriptor the repository was built with.
func (r *SingletonRepository[T]) Kind() Kind[T] { return r.kind }

// Get returns the stored document or the kind's empty default.
func (r *SingletonRepository[T]) Get(ctx context.Context) (v T, err error) {
	defer func() { r.observe("get", err) }()

	doc, err := r.get(ctx, SingletonID)
	if err != nil {
		return v, err
	}
	if doc == nil {
		return r.kind.Default(), nil
	}
	return r.decode(doc)
}

// Exists reports whether the singleton document has ever been written.
func (r *SingletonRepository[T]) Exists(ctx context.Context) (bool, error) {
	doc, err := r.get(ctx, SingletonID)
	if err != nil {
		return false, err
	}
	return doc != nil, nil
}

// Upsert replaces the singleton document with content, creating it under
// SingletonID when absent. Fields left empty in content are cleared, and
// createdAt survives from the first write. It returns the stored entity.
func (r *SingletonRepository[T]) Upsert(ctx context.Context, content T) (v T, err error) {
	defer func() { r.observe("upsert", err) }()
	op := "upsert " + r.kind.Collection

	doc, err := r.get(ctx, SingletonID)
	if err != nil {
		return v, err
	}

	if err := r.validate(&content); err != nil {
		return v, fmt.Errorf("%s: %w", op, err)
	}
	fields, err := r.encode(content)
	if err != nil {
		return v, fmt.Errorf("%s: %w", op, invalid("content", err.Error()))
	}

	now := r.stamp()
	fields["createdAt"] = now
	if doc != nil {
		if created, ok := doc.Fields["createdAt"]; ok && created != nil {
			fields["createdAt"] = created
		}
		fields["updatedAt"] = now
	}
	if err := r.store.Set(ctx, r.kind.Collection, SingletonID, fields); err != nil {
		return v, storeError(op, err)
	}

	doc, err = r.get(ctx, SingletonID)
	if err != nil {
		return v, err
	}
	if doc == nil {
		return r.kind.Default(), nil
	}
	return r.decode(doc)
}

func isManaged(field string) bool {
	for _, f := range managedFields {
		if f == field {
			return true
		}
	}
	return false
}
