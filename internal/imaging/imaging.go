// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging inspects uploaded images and downscales oversized JPEG
// and PNG files before they are stored. GIFs are left untouched to keep
// animation and WebP is decode-only.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPixels caps the number of pixels to prevent memory bombs.
// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
const MaxPixels = 100_000_000

const jpegQuality = 85

var (
	// ErrUnsupported is returned for content that is not an accepted image type.
	ErrUnsupported = errors.New("imaging: unsupported image type")
	// ErrTooLarge is returned when the declared dimensions exceed MaxPixels.
	ErrTooLarge = errors.New("imaging: image dimensions too large")
)

// allowedTypes are the MIME types accepted for upload, keyed to the file
// extension used when the original name has none.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// resizable are the types that are re-encoded when too large.
var resizable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Info describes an inspected image.
type Info struct {
	ContentType string
	Width       int
	Height      int
}

// Extension returns the canonical file extension for a MIME type, or "".
func Extension(contentType string) string {
	return allowedTypes[contentType]
}

// Inspect sniffs the content type and reads the image header without
// decoding pixel data.
func Inspect(data []byte) (Info, error) {
	ct := http.DetectContentType(data)
	if _, ok := allowedTypes[ct]; !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupported, ct)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("imaging: decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Info{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	return Info{ContentType: ct, Width: cfg.Width, Height: cfg.Height}, nil
}

// Fit validates data and, when its longest side exceeds maxDim, returns a
// downscaled copy in the same format. The second return value reports the
// content type of the returned bytes. maxDim <= 0 disables resizing.
func Fit(data []byte, maxDim int) ([]byte, string, error) {
	info, err := Inspect(data)
	if err != nil {
		return nil, "", err
	}

	if maxDim <= 0 || !resizable[info.ContentType] || (info.Width <= maxDim && info.Height <= maxDim) {
		return data, info.ContentType, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("imaging: decode: %w", err)
	}

	w, h := scaled(info.Width, info.Height, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	switch info.ContentType {
	case "image/jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	case "image/png":
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, "", fmt.Errorf("imaging: encode %s: %w", info.ContentType, err)
	}

	return buf.Bytes(), info.ContentType, nil
}

// scaled returns dimensions whose longest side is maxDim, keeping the
// aspect ratio and never going below one pixel.
func scaled(w, h, maxDim int) (int, int) {
	if w >= h {
		nh := h * maxDim / w
		return maxDim, max(nh, 1)
	}
	nw := w * maxDim / h
	return max(nw, 1), maxDim
}
