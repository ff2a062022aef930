// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth implements email/password sign-in against the users
// collection of the document store, with optional TOTP second factor.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"scholarsite/internal/docstore"
	"scholarsite/internal/metrics"
	"scholarsite/internal/models"
)

// UsersCollection holds admin accounts.
const UsersCollection = "users"

var (
	// ErrAuthFailed is returned for any unknown email or wrong password.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrEmailTaken is returned by CreateUser for a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCode is returned when a TOTP code does not validate.
	ErrInvalidCode = errors.New("invalid verification code")
)

// Principal is the identity established by a successful SignIn.
type Principal struct {
	UserID      string
	Email       string
	DisplayName string
	Role        models.Role
	// NeedsTOTP is set when the account has a second factor enrolled that
	// must be verified before the session is fully authenticated.
	NeedsTOTP bool
}

// userRecord is the stored form of a user; unlike models.User it
// serializes the password hash and TOTP secret.
type userRecord struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	DisplayName  string    `json:"displayName"`
	Role         string    `json:"role"`
	TOTPSecret   string    `json:"totpSecret"`
	TOTPEnabled  bool      `json:"totpEnabled"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Service signs users in and manages their credentials.
type Service struct {
	store  docstore.Store
	issuer string
	cost   int
	// dummyHash is compared against when the email is unknown so both
	// failure paths take the same time.
	dummyHash []byte
}

// New returns a Service. issuer names the site in authenticator apps.
func New(store docstore.Store, issuer string) *Service {
	return newService(store, issuer, bcrypt.DefaultCost)
}

func newService(store docstore.Store, issuer string, cost int) *Service {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &Service{store: store, issuer: issuer, cost: cost, dummyHash: dummy}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn checks email and password. Unknown emails and wrong passwords
// both return ErrAuthFailed.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Principal, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		metrics.LoginAttempts.WithLabelValues("failed").Inc()
		return nil, ErrAuthFailed
	}
	if !CheckPassword(user, password) {
		metrics.LoginAttempts.WithLabelValues("failed").Inc()
		return nil, ErrAuthFailed
	}

	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	return &Principal{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		NeedsTOTP:   user.TOTPEnabled,
	}, nil
}

// CheckPassword compares a plaintext password against the user's bcrypt hash.
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// CreateUser stores a new user with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, email, password, displayName string, role models.Role) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || len(password) < 8 {
		return nil, fmt.Errorf("create user: email is required and password must be at least 8 characters")
	}
	if role == "" {
		role = models.RoleAdmin
	}
	if !role.Valid() {
		return nil, fmt.Errorf("create user: unknown role %q", role)
	}

	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec := userRecord{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         string(role),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	fields, err := docstore.Normalize(rec)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	id, err := s.store.Create(ctx, UsersCollection, fields)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return toUser(id, rec), nil
}

// FindByEmail returns the user with email, or (nil, nil) if none exists.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := s.store.Query(ctx, UsersCollection, docstore.Query{
		EqualsField: "email",
		EqualsValue: normalizeEmail(email),
		Limit:       1,
	})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeUser(&docs[0])
}

// FindByID returns the user with id, or (nil, nil) if none exists.
func (s *Service) FindByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := s.store.Get(ctx, UsersCollection, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	return decodeUser(doc)
}

// HasUsers reports whether at least one account exists.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	docs, err := s.store.Query(ctx, UsersCollection, docstore.Query{Limit: 1})
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return len(docs) > 0, nil
}

// SetPassword replaces the user's password.
func (s *Service) SetPassword(ctx context.Context, userID, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("set password: password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.Merge(ctx, UsersCollection, userID, docstore.Fields{"passwordHash": string(hash)}); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

func decodeUser(doc *docstore.Document) (*models.User, error) {
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("decode user %s: %w", doc.ID, err)
	}
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", doc.ID, err)
	}
	return toUser(doc.ID, rec), nil
}

func toUser(id string, rec userRecord) *models.User {
	return &models.User{
		ID:           id,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		DisplayName:  rec.DisplayName,
		Role:         models.Role(rec.Role),
		TOTPSecret:   rec.TOTPSecret,
		TOTPEnabled:  rec.TOTPEnabled,
		CreatedAt:    rec.CreatedAt,
	}
}
