package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestID assigns every request an id. A well-formed incoming
// X-Request-ID is kept so ids can be traced across services; anything else
// is replaced by a fresh UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
