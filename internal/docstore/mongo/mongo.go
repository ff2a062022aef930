// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mongo stores each content collection as a native MongoDB
// collection with string _id values.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"scholarsite/internal/docstore"
)

const defaultDBName = "scholarsite"

// indexes lists the secondary indexes backing the list queries the site runs.
var indexes = map[string][]bson.D{
	"publications": {{{Key: "year", Value: -1}}},
	"gallery":      {{{Key: "category", Value: 1}, {Key: "order", Value: 1}}, {{Key: "order", Value: 1}}},
	"events":       {{{Key: "startDate", Value: -1}}},
	"feedback":     {{{Key: "createdAt", Value: -1}}},
	"users":        {{{Key: "email", Value: 1}}},
}

// Store implements docstore.Store on a MongoDB database.
type Store struct {
	client *mongodriver.Client
	db     *mongodriver.Database
}

var _ docstore.Store = (*Store)(nil)

// New connects to MongoDB, pings the primary and ensures indexes. The
// database name is taken from the URI path.
func New(ctx context.Context, uri string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := &Store{client: cli, db: cli.Database(databaseFromURI(uri))}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	for coll, keys := range indexes {
		models := make([]mongodriver.IndexModel, 0, len(keys))
		for _, k := range keys {
			models = append(models, mongodriver.IndexModel{Keys: k})
		}
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo ensure indexes %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	const op = "docstore/mongo.Query"

	if err := docstore.ValidateQuery(q); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	filter := bson.M{}
	if q.HasFilter() {
		want, err := docstore.NormalizeValue(q.EqualsValue)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		filter[q.EqualsField] = want
	}

	// ObjectID hex ids grow with insertion time, so _id breaks ties in
	// insertion order.
	sort := bson.D{}
	if q.OrderField != "" {
		dir := 1
		if q.OrderDesc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: q.OrderField, Value: dir})
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	opts := options.Find().SetSort(sort)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	docs := []docstore.Document{}
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		docs = append(docs, toDocument(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	const op = "docstore/mongo.Get"

	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	doc := toDocument(raw)
	return &doc, nil
}

func (s *Store) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	const op = "docstore/mongo.Create"

	doc, err := docstore.Normalize(fields)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id := primitive.NewObjectID().Hex()
	doc["_id"] = id

	if _, err := s.db.Collection(collection).InsertOne(ctx, bson.M(doc)); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	const op = "docstore/mongo.Set"

	doc, err := docstore.Normalize(fields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	delete(doc, "_id")

	_, err = s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id}, bson.M(doc), options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Merge(ctx context.Context, collection, id string, fields docstore.Fields) error {
	const op = "docstore/mongo.Merge"

	doc, err := docstore.Normalize(fields)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	delete(doc, "_id")
	if len(doc) == 0 {
		n, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if n == 0 {
			return fmt.Errorf("%s: %s/%s: %w", op, collection, id, docstore.ErrNotFound)
		}
		return nil
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(doc)})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %s/%s: %w", op, collection, id, docstore.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	const op = "docstore/mongo.Delete"

	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func toDocument(raw bson.M) docstore.Document {
	doc := docstore.Document{Fields: docstore.Fields{}}
	for k, v := range raw {
		if k == "_id" {
			doc.ID = idString(v)
			continue
		}
		doc.Fields[k] = plain(v)
	}
	return doc
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	}
	return fmt.Sprint(v)
}

// plain converts driver-specific BSON values into the normalized shapes the
// rest of the application expects.
func plain(v any) any {
	switch x := v.(type) {
	case bson.M:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = plain(e)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = plain(e.Value)
		}
		return m
	case bson.A:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = plain(e)
		}
		return s
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case primitive.DateTime:
		return x.Time().UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		return x.Hex()
	}
	return v
}

// databaseFromURI extracts the database name from a mongodb URI path,
// falling back to a default.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
