package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKey(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		configured string
		provided   string
		wantStatus int
	}{
		{name: "valid key", configured: "secret", provided: "secret", wantStatus: http.StatusOK},
		{name: "wrong key", configured: "secret", provided: "nope", wantStatus: http.StatusUnauthorized},
		{name: "missing key", configured: "secret", provided: "", wantStatus: http.StatusUnauthorized},
		{name: "auth disabled", configured: "", provided: "", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := APIKey(tt.configured)(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
			if tt.provided != "" {
				req.Header.Set("X-API-Key", tt.provided)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
