package middleware

import "net/http"

// VaryLocale adds Accept-Language to the Vary header so shared caches keep
// localized responses apart.
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}
