package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/sport-facilities/internal/application"
)

func TestRequireIdentity(t *testing.T) {
	capture := func(principal *application.Principal, called *bool) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*called = true
			if p, ok := PrincipalFromContext(r.Context()); ok {
				*principal = p
			}
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("rejects requests without a user id", func(t *testing.T) {
		var called bool
		var principal application.Principal
		handler := RequireIdentity(nil)(capture(&principal, &called))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/facilities", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status %d, want 401", rec.Code)
		}
		if called {
			t.Fatal("handler must not run without an identity")
		}
	})

	t.Run("resolves the principal from headers", func(t *testing.T) {
		var called bool
		var principal application.Principal
		handler := RequireIdentity(nil)(capture(&principal, &called))

		req := httptest.NewRequest(http.MethodGet, "/facilities", nil)
		req.Header.Set(HeaderUserID, " user-1 ")
		req.Header.Set(HeaderUserEmail, "user-1@example.com")
		req.Header.Set(HeaderUserRole, "administrator")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if !called {
			t.Fatal("handler did not run")
		}
		if principal.UserID != "user-1" {
			t.Fatalf("user id %q", principal.UserID)
		}
		if principal.Email != "user-1@example.com" {
			t.Fatalf("email %q", principal.Email)
		}
		if !principal.IsAdmin {
			t.Fatal("role header should grant admin, case-insensitive")
		}
	})

	t.Run("other roles are not admin", func(t *testing.T) {
		var called bool
		var principal application.Principal
		handler := RequireIdentity(nil)(capture(&principal, &called))

		req := httptest.NewRequest(http.MethodGet, "/facilities", nil)
		req.Header.Set(HeaderUserID, "user-2")
		req.Header.Set(HeaderUserRole, "Member")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if !called || principal.IsAdmin {
			t.Fatalf("called=%v principal=%+v", called, principal)
		}
	})
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	var sawLogger bool
	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reservations", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status %d, want 418", rec.Code)
	}
	if !sawLogger {
		t.Fatal("request scoped logger missing from context")
	}
}
