package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRefreshToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	handler := RefreshToken(string(hash))(okHandler())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer s3cret", http.StatusAccepted},
		{"lower-case scheme", "bearer s3cret", http.StatusAccepted},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic czNjcmV0", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := refreshRequest("10.0.0.1")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRefreshTokenOpenWhenUnset(t *testing.T) {
	handler := RefreshToken("")(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, refreshRequest("10.0.0.1"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected open endpoint, got %d", rec.Code)
	}
}
