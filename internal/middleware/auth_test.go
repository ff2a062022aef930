// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"scholarsite/internal/session"
)

type stubLoader struct {
	data *session.Data
	err  error
}

func (s stubLoader) Get(context.Context, *http.Request) (*session.Data, error) {
	return s.data, s.err
}

func newTestSession(role string, needsTOTP, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      "user-1",
		Email:       "prof@example.com",
		DisplayName: "Prof",
		Role:        role,
		NeedsTOTP:   needsTOTP,
		TwoFADone:   twoFADone,
	}
}

// okHandler records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestLoadSession(t *testing.T) {
	t.Run("stores session in context", func(t *testing.T) {
		sess := newTestSession("admin", false, false)
		var got *session.Data
		h := LoadSession(stubLoader{data: sess})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = SessionFromCtx(r.Context())
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if got != sess {
			t.Fatalf("session: got %v, want %v", got, sess)
		}
	})

	t.Run("store error proceeds unauthenticated", func(t *testing.T) {
		called := false
		h := LoadSession(stubLoader{err: errors.New("valkey down")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			if SessionFromCtx(r.Context()) != nil {
				t.Error("expected no session")
			}
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if !called {
			t.Error("next handler should have been called")
		}
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("rejects missing session", func(t *testing.T) {
		next, called := okHandler()
		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/publications", nil))

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if *called {
			t.Error("next handler should not run")
		}
	})

	t.Run("passes with session", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithSession(req.Context(), newTestSession("admin", false, false)))
		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, req)

		if !*called {
			t.Error("next handler should run")
		}
	})
}

func TestRequire2FA(t *testing.T) {
	tests := []struct {
		name       string
		sess       *session.Data
		wantStatus int
	}{
		{name: "no second factor enrolled", sess: newTestSession("admin", false, false), wantStatus: http.StatusOK},
		{name: "second factor pending", sess: newTestSession("admin", true, false), wantStatus: http.StatusUnauthorized},
		{name: "second factor verified", sess: newTestSession("admin", true, true), wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithSession(req.Context(), tt.sess))
			rr := httptest.NewRecorder()
			Require2FA(next).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	for role, want := range map[string]int{"admin": http.StatusOK, "editor": http.StatusForbidden} {
		t.Run(role, func(t *testing.T) {
			next, _ := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithSession(req.Context(), newTestSession(role, false, false)))
			rr := httptest.NewRecorder()
			RequireAdmin(next).ServeHTTP(rr, req)

			if rr.Code != want {
				t.Errorf("status: got %d, want %d", rr.Code, want)
			}
		})
	}
}
