package middleware

import "net/http"

// HTMX flags requests issued by the htmx client library so downstream
// handlers can answer with fragments instead of full pages.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithHTMX(r.Context(), r.Header.Get("HX-Request") == "true")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
