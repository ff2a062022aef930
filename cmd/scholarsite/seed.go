// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scholarsite/internal/models"
	"scholarsite/internal/seed"
)

var (
	seedFile  string
	seedClear bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the document store with starter content",
}

var seedGalleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Add placeholder gallery items",
	Long: `Adds gallery items from --file, or the built-in placeholder set when no
file is given. Items whose title already exists are skipped. --clear removes
every gallery item first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		items := seed.DefaultGallery()
		if seedFile != "" {
			f, err := os.Open(seedFile)
			if err != nil {
				return err
			}
			defer f.Close()

			items, err = seed.ParseGallery(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", seedFile, err)
			}
		}

		svc, store, err := openContent(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := seed.Gallery(ctx, svc, items, seedClear)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "gallery: %d removed, %d added, %d skipped\n", res.Removed, res.Added, res.Skipped)
		return nil
	},
}

var seedPagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Write default content for static pages that have none",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, store, err := openContent(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		written, err := seed.Pages(ctx, svc)
		if err != nil {
			return err
		}

		if len(written) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "pages: nothing to do")
			return nil
		}
		for _, page := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "pages: wrote %s\n", page)
		}
		return nil
	},
}

func init() {
	seedGalleryCmd.Long += "\n\nValid categories: " + categoryList() + "."
	seedGalleryCmd.Flags().StringVar(&seedFile, "file", "", "YAML file with gallery items")
	seedGalleryCmd.Flags().BoolVar(&seedClear, "clear", false, "remove existing gallery items first")

	seedCmd.AddCommand(seedGalleryCmd, seedPagesCmd)
	rootCmd.AddCommand(seedCmd)
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
