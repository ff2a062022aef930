// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"scholarsite/internal/content"
)

// maxJSONBytes bounds the JSON part of an admin write.
const maxJSONBytes = 1 << 20

var errTooLarge = errors.New("request body too large")

// writeRequest is the decoded body of an admin write: a JSON document and
// an optional image.
type writeRequest struct {
	data  []byte
	image *content.File
}

// readWrite accepts either a JSON body or multipart/form-data with a
// "data" field holding the JSON document and an optional "image" file.
func readWrite(w http.ResponseWriter, r *http.Request, maxImageBytes int64) (*writeRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, bodyError(err)
		}
		return &writeRequest{data: data}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+maxJSONBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return nil, bodyError(err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	req := &writeRequest{data: []byte(r.FormValue("data"))}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil
	case err != nil:
		return nil, bodyError(err)
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		return nil, errTooLarge
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, bodyError(err)
	}
	req.image = &content.File{Name: header.Filename, Data: data}
	return req, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || strings.Contains(err.Error(), "too large") {
		return errTooLarge
	}
	return fmt.Errorf("read request body: %w", &content.ValidationError{Fields: map[string]string{"body": err.Error()}})
}
