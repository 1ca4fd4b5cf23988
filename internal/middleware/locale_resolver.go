package middleware

import (
	"context"
	"net/http"
	"strings"

	"lampery.dev/storefront/internal/i18n"
)

// Locale fixes the request language: an explicit hl query parameter
// switches and persists it, otherwise the session value, the hl cookie,
// or the Accept-Language header decide, in that order. Languages the
// bundle never loaded are ignored rather than stored.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(context.WithValue(r.Context(), ctxKeyLocaleFB, bundle.Fallback()))
			s := GetSession(r)

			switch {
			case r.URL.Query().Get("hl") != "":
				if lang := strings.ToLower(r.URL.Query().Get("hl")); bundle.Has(lang) {
					s.Locale = lang
					s.MarkDirty()
					http.SetCookie(w, &http.Cookie{Name: "hl", Value: lang, Path: "/"})
				}
			case s.Locale == "":
				if c, err := r.Cookie("hl"); err == nil && bundle.Has(strings.ToLower(c.Value)) {
					s.Locale = strings.ToLower(c.Value)
				} else {
					s.Locale = bundle.Resolve(r.Header.Get("Accept-Language"))
				}
				s.MarkDirty()
			}

			if s.Locale != "" {
				w.Header().Set("Content-Language", s.Locale)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Lang returns the resolved request language. Requests that bypassed the
// Locale middleware get the bundle fallback from the context, or German as
// the shop default.
func Lang(r *http.Request) string {
	if s := GetSession(r); s != nil && s.Locale != "" {
		return s.Locale
	}
	if fb, ok := r.Context().Value(ctxKeyLocaleFB).(string); ok && fb != "" {
		return fb
	}
	return "de"
}
