// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"scholarsite/internal/docstore"
)

// Enrollment is a pending TOTP secret shown to the user once.
type Enrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	// QRCode is a data URI of a 256px PNG encoding URL.
	QRCode string `json:"qrCode"`
}

// BeginTOTP generates a new secret for the user and stores it disabled
// until ConfirmTOTP succeeds. Calling it again replaces a pending secret.
func (s *Service) BeginTOTP(ctx context.Context, userID string) (*Enrollment, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAuthFailed
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}

	if err := s.store.Merge(ctx, UsersCollection, userID, docstore.Fields{
		"totpSecret":  key.Secret(),
		"totpEnabled": false,
	}); err != nil {
		return nil, fmt.Errorf("save totp secret: %w", err)
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code generation: %w", err)
	}

	return &Enrollment{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG),
	}, nil
}

// VerifyTOTP checks code against the user's secret. A correct code for a
// pending secret enables the second factor.
func (s *Service) VerifyTOTP(ctx context.Context, userID, code string) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.TOTPSecret == "" {
		return ErrInvalidCode
	}

	if !totp.Validate(code, user.TOTPSecret) {
		return ErrInvalidCode
	}

	if !user.TOTPEnabled {
		if err := s.store.Merge(ctx, UsersCollection, userID, docstore.Fields{"totpEnabled": true}); err != nil {
			return fmt.Errorf("enable totp: %w", err)
		}
	}
	return nil
}

// ResetTOTP removes the user's second factor.
func (s *Service) ResetTOTP(ctx context.Context, userID string) error {
	if err := s.store.Merge(ctx, UsersCollection, userID, docstore.Fields{
		"totpSecret":  "",
		"totpEnabled": false,
	}); err != nil {
		return fmt.Errorf("reset totp: %w", err)
	}
	return nil
}
