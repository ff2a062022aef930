// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarsite/internal/models"
)

func TestAdminRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/admin/publications")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.sendJSON(t, http.MethodPost, "/api/admin/publications", map[string]any{"title": "x"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRequiresCSRFHeader(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.do(t, http.MethodPost, "/api/admin/publications", "application/json",
		strings.NewReader(`{"title":"T","authors":"A","journal":"J","year":2020}`), false)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminPublicationCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.sendJSON(t, http.MethodPost, "/api/admin/publications", map[string]any{
		"title": "Deep Nets", "authors": "A. Author", "journal": "JMLR", "year": 2021, "doi": "10.1/x",
	})
	created := decode[map[string]string](t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"]
	require.NotEmpty(t, id)

	resp = env.sendJSON(t, http.MethodPatch, "/api/admin/publications/"+id, map[string]any{"journal": "NeurIPS"})
	patched := decode[models.Publication](t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "NeurIPS", patched.Journal)
	assert.Equal(t, "Deep Nets", patched.Title)
	assert.Equal(t, "10.1/x", patched.DOI)
	assert.NotNil(t, patched.UpdatedAt)

	resp = env.sendJSON(t, http.MethodPut, "/api/admin/publications/"+id, map[string]any{
		"title": "Deeper Nets", "authors": "A. Author", "journal": "JMLR", "year": 2022,
	})
	replaced := decode[models.Publication](t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Deeper Nets", replaced.Title)
	assert.Empty(t, replaced.DOI)

	got := decode[models.Publication](t, env.get(t, "/api/admin/publications/"+id))
	assert.Equal(t, "Deeper Nets", got.Title)

	resp = env.do(t, http.MethodDelete, "/api/admin/publications/"+id, "", nil, true)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting again succeeds.
	resp = env.do(t, http.MethodDelete, "/api/admin/publications/"+id, "", nil, true)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.get(t, "/api/admin/publications/"+id)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		field  string
	}{
		{name: "missing title", method: http.MethodPost, path: "/api/admin/publications",
			body: map[string]any{"authors": "A", "journal": "J", "year": 2020}, field: "title"},
		{name: "year out of range", method: http.MethodPost, path: "/api/admin/publications",
			body: map[string]any{"title": "T", "authors": "A", "journal": "J", "year": 1066}, field: "year"},
		{name: "unknown field", method: http.MethodPost, path: "/api/admin/events",
			body: map[string]any{"title": "T", "venue": "x"}, field: "data"},
		{name: "bad category", method: http.MethodPost, path: "/api/admin/gallery",
			body: map[string]any{"title": "T", "category": "holiday"}, field: "category"},
		{name: "end before start", method: http.MethodPost, path: "/api/admin/events",
			body: map[string]any{"title": "T", "description": "D",
				"startDate": "2024-05-02T10:00:00Z", "endDate": "2024-05-01T10:00:00Z"}, field: "endDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.sendJSON(t, tt.method, tt.path, tt.body)
			body := decode[errorResponse](t, resp)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Contains(t, body.Fields, tt.field)
		})
	}
}

func TestAdminPatchUnknownID(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.sendJSON(t, http.MethodPatch, "/api/admin/events/missing", map[string]any{"title": "x"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminGalleryMultipartUpload(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.sendMultipart(t, http.MethodPost, "/api/admin/gallery",
		map[string]any{"title": "Lab", "category": "laboratory", "order": 1},
		"lab photo.png", pngImage(t, 8, 8))
	created := decode[map[string]string](t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	item, err := env.content.GetGalleryItem(context.Background(), created["id"])
	require.NoError(t, err)
	require.Len(t, env.blobs.keys, 1)
	assert.True(t, strings.HasPrefix(env.blobs.keys[0], "gallery/"))
	assert.True(t, strings.HasSuffix(env.blobs.keys[0], "-lab_photo.png"))
	assert.Equal(t, "https://cdn.example.com/"+env.blobs.keys[0], item.ImageURL)

	// Replace the image through PATCH without touching other fields.
	resp = env.sendMultipart(t, http.MethodPatch, "/api/admin/gallery/"+created["id"],
		map[string]any{}, "new.png", pngImage(t, 4, 4))
	patched := decode[models.GalleryItem](t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lab", patched.Title)
	assert.NotEqual(t, item.ImageURL, patched.ImageURL)
}

func TestAdminUploadFailureIsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.blobs.fail = true

	resp := env.sendMultipart(t, http.MethodPost, "/api/admin/events",
		map[string]any{"title": "Talk", "description": "D", "startDate": "2024-05-01T10:00:00Z"},
		"poster.png", pngImage(t, 4, 4))
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	events, err := env.content.GetEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAdminRejectsNonImageUpload(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.sendMultipart(t, http.MethodPost, "/api/admin/gallery",
		map[string]any{"title": "Lab", "category": "laboratory"},
		"notes.txt", []byte("plain text, not an image"))
	body := decode[errorResponse](t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body.Fields, "image")
}

func TestAdminPublicationRejectsImage(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.sendMultipart(t, http.MethodPost, "/api/admin/publications",
		map[string]any{"title": "T", "authors": "A", "journal": "J", "year": 2020},
		"cover.png", pngImage(t, 4, 4))
	body := decode[errorResponse](t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body.Fields, "image")
}

func TestAdminUploadTooLarge(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	big := make([]byte, 3<<20)
	resp := env.sendMultipart(t, http.MethodPost, "/api/admin/gallery",
		map[string]any{"title": "Lab", "category": "laboratory"}, "big.png", big)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestAdminFeedback(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	ctx := context.Background()

	id, err := env.content.AddFeedback(ctx, models.FeedbackMessage{
		Name: "Sam", Email: "sam@example.com", Subject: "S", Message: "M",
	})
	require.NoError(t, err)

	unread := decode[[]models.FeedbackMessage](t, env.get(t, "/api/admin/feedback?unread=true"))
	require.Len(t, unread, 1)

	resp := env.do(t, http.MethodPatch, "/api/admin/feedback/"+id+"/read", "", nil, true)
	msg := decode[models.FeedbackMessage](t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, msg.IsRead)

	unread = decode[[]models.FeedbackMessage](t, env.get(t, "/api/admin/feedback?unread=true"))
	assert.Empty(t, unread)

	resp = env.sendJSON(t, http.MethodPatch, "/api/admin/feedback/"+id+"/read", map[string]bool{"isRead": false})
	msg = decode[models.FeedbackMessage](t, resp)
	assert.False(t, msg.IsRead)

	all := decode[[]models.FeedbackMessage](t, env.get(t, "/api/admin/feedback"))
	assert.Len(t, all, 1)
}

func TestAdminPageUpdate(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp := env.sendJSON(t, http.MethodPut, "/api/admin/pages/foundation", models.FoundationContent{
		Mission:     "Support students",
		Programs:    []models.Program{{Title: "Scholarships", Description: "D", Beneficiaries: "50", IconName: "award"}},
		ImpactStats: []models.ImpactStat{},
	})
	saved := decode[models.FoundationContent](t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Support students", saved.Mission)
	assert.NotNil(t, saved.UpcomingEvents)

	public := decode[models.FoundationContent](t, env.get(t, "/api/pages/foundation"))
	assert.Equal(t, "Support students", public.Mission)
	require.Len(t, public.Programs, 1)

	// A PUT replaces the page: lists it omits come back empty.
	resp = env.sendJSON(t, http.MethodPut, "/api/admin/pages/foundation", map[string]any{"mission": "Fund research"})
	replaced := decode[models.FoundationContent](t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Fund research", replaced.Mission)
	assert.Empty(t, replaced.Programs)

	public = decode[models.FoundationContent](t, env.get(t, "/api/pages/foundation"))
	assert.Equal(t, "Fund research", public.Mission)
	assert.Empty(t, public.Programs)

	resp = env.sendJSON(t, http.MethodPut, "/api/admin/pages/blog", map[string]any{})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.sendJSON(t, http.MethodPut, "/api/admin/pages/contact", map[string]any{"phone": "x"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestEditorRole(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.CreateUser(context.Background(), "editor@example.com", "editor-password", "Ed", models.RoleEditor)
	require.NoError(t, err)
	env.loginAs(t, "editor@example.com", "editor-password")

	resp := env.sendJSON(t, http.MethodPost, "/api/admin/publications", map[string]any{
		"title": "Editors can publish", "authors": "E. Ditor", "journal": "J", "year": 2024,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.get(t, "/api/admin/feedback")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.sendJSON(t, http.MethodPut, "/api/admin/pages/contact", models.NewContactContent())
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	env.login(t)
	resp = env.get(t, "/api/admin/feedback")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
