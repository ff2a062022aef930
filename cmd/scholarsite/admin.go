// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"scholarsite/internal/auth"
	"scholarsite/internal/models"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
	adminRole     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFromFlagOrStdin(cmd)
		if err != nil {
			return err
		}

		return withAuth(cmd.Context(), func(ctx context.Context, svc *auth.Service) error {
			user, err := svc.CreateUser(ctx, adminEmail, password, adminName, models.Role(adminRole))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with id %s\n", user.Email, user.Role, user.ID)
			return nil
		})
	},
}

var adminPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Replace an account's password",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFromFlagOrStdin(cmd)
		if err != nil {
			return err
		}

		return withUser(cmd.Context(), func(ctx context.Context, svc *auth.Service, user *models.User) error {
			if err := svc.SetPassword(ctx, user.ID, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", user.Email)
			return nil
		})
	},
}

var adminResetTOTPCmd = &cobra.Command{
	Use:   "reset-2fa",
	Short: "Disable two-factor authentication for an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(cmd.Context(), func(ctx context.Context, svc *auth.Service, user *models.User) error {
			if err := svc.ResetTOTP(ctx, user.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "two-factor authentication reset for %s\n", user.Email)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{adminCreateCmd, adminPasswordCmd, adminResetTOTPCmd} {
		c.Flags().StringVar(&adminEmail, "email", "", "account email")
		_ = c.MarkFlagRequired("email")
	}
	for _, c := range []*cobra.Command{adminCreateCmd, adminPasswordCmd} {
		c.Flags().StringVar(&adminPassword, "password", "", "password (read from stdin when empty)")
	}
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "display name")
	adminCreateCmd.Flags().StringVar(&adminRole, "role", string(models.RoleAdmin), "role: admin or editor")

	adminCmd.AddCommand(adminCreateCmd, adminPasswordCmd, adminResetTOTPCmd)
	rootCmd.AddCommand(adminCmd)
}

func withAuth(ctx context.Context, fn func(context.Context, *auth.Service) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s docstore: %w", cfg.DocstoreDriver, err)
	}
	defer store.Close()

	return fn(ctx, auth.New(store, totpIssuer))
}

func withUser(ctx context.Context, fn func(context.Context, *auth.Service, *models.User) error) error {
	return withAuth(ctx, func(ctx context.Context, svc *auth.Service) error {
		user, err := svc.FindByEmail(ctx, adminEmail)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("no account for %s", adminEmail)
		}
		return fn(ctx, svc, user)
	})
}

// passwordFromFlagOrStdin reads the first line of stdin when --password is unset.
func passwordFromFlagOrStdin(cmd *cobra.Command) (string, error) {
	if adminPassword != "" {
		return adminPassword, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}
