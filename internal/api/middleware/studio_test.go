package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func studioFrom(t *testing.T, req *http.Request) string {
	t.Helper()
	var got string
	h := StudioExtractor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetStudio(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestStudioExtractor_Header(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil)
	req.Header.Set("X-Studio", "atelier")
	if got := studioFrom(t, req); got != "atelier" {
		t.Fatalf("studio = %q, want atelier", got)
	}
}

func TestStudioExtractor_QueryFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets?studio=loft", nil)
	if got := studioFrom(t, req); got != "loft" {
		t.Fatalf("studio = %q, want loft", got)
	}
}

func TestStudioExtractor_HeaderWinsOverQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets?studio=loft", nil)
	req.Header.Set("X-Studio", "atelier")
	if got := studioFrom(t, req); got != "atelier" {
		t.Fatalf("studio = %q, want atelier", got)
	}
}

func TestStudioExtractor_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil)
	if got := studioFrom(t, req); got != DefaultStudio {
		t.Fatalf("studio = %q, want %q", got, DefaultStudio)
	}
}

func TestGetStudio_MissingContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetStudio(req.Context()); got != DefaultStudio {
		t.Fatalf("studio = %q, want %q", got, DefaultStudio)
	}
}
