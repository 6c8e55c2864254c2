package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeVerifier struct {
	accept string
}

func (f *fakeVerifier) Verify(_ context.Context, rawToken string) error {
	if rawToken == f.accept {
		return nil
	}
	return ErrUnauthorized
}

func protected(verifier TokenVerifier) http.Handler {
	return Authenticate(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAuthenticateNilVerifierPassesThrough(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/errors/1/retry", nil)

	protected(nil).ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func TestAuthenticate(t *testing.T) {
	verifier := &fakeVerifier{accept: "good-token"}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer good-token", http.StatusNoContent},
		{"invalid token", "Bearer bad-token", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good-token", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("PUT", "/errors/1/status", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			protected(verifier).ServeHTTP(w, r)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
