package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"permit-history/internal/platform/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAPIKey(t *testing.T) {
	cases := []struct {
		name   string
		key    string
		header map[string]string
		want   int
	}{
		{"dev mode", "", nil, http.StatusNoContent},
		{"missing", "s3cret", nil, http.StatusUnauthorized},
		{"wrong", "s3cret", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header", "s3cret", map[string]string{"X-API-Key": "s3cret"}, http.StatusNoContent},
		{"bearer", "s3cret", map[string]string{"Authorization": "Bearer s3cret"}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/snapshots", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			APIKey(tc.key)(okHandler()).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRequestLog_LogsServerErrors(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Info, Out: &buf})

	h := RequestLog(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/history/summary", nil))

	if !strings.Contains(buf.String(), "status=502") || !strings.Contains(buf.String(), "path=/history/summary") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}
