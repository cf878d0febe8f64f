package middleware

import "net/http"

// BodyLimit caps the request body at maxBytes. Requests here carry only small
// JSON payloads; file bytes go directly to storage and never hit this server.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
