package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// StudioKey is the context key for the studio name.
const StudioKey contextKey = "studio"

// DefaultStudio is used when a request carries no studio identity.
const DefaultStudio = "default"

// StudioExtractor resolves the studio a request operates in. It checks
// the X-Studio header, then the studio query parameter, and falls back
// to "default".
func StudioExtractor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		studio := strings.TrimSpace(r.Header.Get("X-Studio"))
		if studio == "" {
			studio = strings.TrimSpace(r.URL.Query().Get("studio"))
		}
		if studio == "" {
			studio = DefaultStudio
		}

		ctx := context.WithValue(r.Context(), StudioKey, studio)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetStudio retrieves the studio name from the request context.
func GetStudio(ctx context.Context) string {
	if v, ok := ctx.Value(StudioKey).(string); ok {
		return v
	}
	return DefaultStudio
}
