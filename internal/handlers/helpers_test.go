// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scholarsite/internal/auth"
	"scholarsite/internal/cache"
	"scholarsite/internal/content"
	"scholarsite/internal/docstore"
	"scholarsite/internal/docstore/memstore"
	"scholarsite/internal/handlers"
	"scholarsite/internal/middleware"
	"scholarsite/internal/models"
	"scholarsite/internal/router"
	"scholarsite/internal/session"
)

const (
	adminEmail    = "prof@example.com"
	adminPassword = "correct-horse-battery"
)

// memSessions is an in-process SessionStore.
type memSessions struct {
	mu   sync.Mutex
	data map[string]session.Data
}

func newMemSessions() *memSessions {
	return &memSessions{data: map[string]session.Data{}}
}

func (m *memSessions) Create(_ context.Context, w http.ResponseWriter, d *session.Data) (string, error) {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	id := hex.EncodeToString(b)

	m.mu.Lock()
	m.data[id] = *d
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: id, Path: "/", HttpOnly: true})
	return id, nil
}

func (m *memSessions) Get(_ context.Context, r *http.Request) (*session.Data, error) {
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[c.Value]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *memSessions) Update(_ context.Context, r *http.Request, d *session.Data) error {
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return errors.New("no cookie")
	}
	m.mu.Lock()
	m.data[c.Value] = *d
	m.mu.Unlock()
	return nil
}

func (m *memSessions) Destroy(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil
	}
	m.mu.Lock()
	delete(m.data, c.Value)
	m.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1})
	return nil
}

// fakeBlobs records uploads, failing when fail is set.
type fakeBlobs struct {
	mu   sync.Mutex
	keys []string
	fail bool
}

func (f *fakeBlobs) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("blob backend down")
	}
	f.keys = append(f.keys, key)
	return f.URL(key), nil
}

func (f *fakeBlobs) Delete(context.Context, string) error { return nil }

func (f *fakeBlobs) URL(key string) string { return "https://cdn.example.com/" + key }

// downStore fails every call as an unreachable backend would.
type downStore struct{}

var errDown = errors.New("connection refused")

func (downStore) Query(context.Context, string, docstore.Query) ([]docstore.Document, error) {
	return nil, errDown
}
func (downStore) Get(context.Context, string, string) (*docstore.Document, error) {
	return nil, errDown
}
func (downStore) Create(context.Context, string, docstore.Fields) (string, error) { return "", errDown }
func (downStore) Set(context.Context, string, string, docstore.Fields) error      { return errDown }
func (downStore) Merge(context.Context, string, string, docstore.Fields) error    { return errDown }
func (downStore) Delete(context.Context, string, string) error                    { return errDown }
func (downStore) Ping(context.Context) error                                      { return errDown }
func (downStore) Close() error                                                    { return nil }

type testEnv struct {
	server  *httptest.Server
	client  *http.Client
	content *content.Service
	auth    *auth.Service
	blobs   *fakeBlobs
	adminID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memstore.New())
}

func newTestEnvWithStore(t *testing.T, store docstore.Store) *testEnv {
	t.Helper()

	blobs := &fakeBlobs{}
	uploader := content.NewUploader(blobs, content.RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond}, 0)
	svc := content.NewService(store, uploader)
	authSvc := auth.New(store, "Scholarsite")
	pageCache := cache.NewPageCache(nil, 0)
	sessions := newMemSessions()

	env := &testEnv{content: svc, auth: authSvc, blobs: blobs}
	if _, ok := store.(*memstore.Store); ok {
		user, err := authSvc.CreateUser(context.Background(), adminEmail, adminPassword, "Prof", models.RoleAdmin)
		require.NoError(t, err)
		env.adminID = user.ID
	}

	r := router.New(router.Deps{
		Sessions: sessions,
		Public:   handlers.NewPublic(svc, pageCache),
		Admin:    handlers.NewAdmin(svc, pageCache, 1<<20),
		Auth:     handlers.NewAuth(authSvc, sessions),
		Health:   handlers.NewHealth(map[string]handlers.Pinger{"docstore": svc}),
	})
	env.server = httptest.NewServer(r)
	t.Cleanup(env.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	env.client = &http.Client{Jar: jar}
	return env
}

// csrfToken returns the CSRF cookie, fetching one first if needed.
func (e *testEnv) csrfToken(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(e.server.URL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	resp := e.do(t, http.MethodGet, "/api/auth/me", "", nil, false)
	resp.Body.Close()
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	t.Fatal("no CSRF cookie issued")
	return ""
}

func (e *testEnv) do(t *testing.T, method, path, contentType string, body io.Reader, withCSRF bool) *http.Response {
	t.Helper()
	var token string
	if withCSRF {
		token = e.csrfToken(t)
	}
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(middleware.CSRFHeaderName, token)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	return e.do(t, http.MethodGet, path, "", nil, false)
}

func (e *testEnv) sendJSON(t *testing.T, method, path string, v any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return e.do(t, method, path, "application/json", bytes.NewReader(raw), true)
}

func (e *testEnv) sendMultipart(t *testing.T, method, path string, data any, filename string, image []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("data", string(raw)))
	if image != nil {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return e.do(t, method, path, mw.FormDataContentType(), &buf, true)
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	e.loginAs(t, adminEmail, adminPassword)
}

func (e *testEnv) loginAs(t *testing.T, email, password string) {
	t.Helper()
	resp := e.sendJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
