package middleware

import (
	"net/http"
	"strconv"

	"github.com/mirrosha26/CoreBackend/pkg/ctxutil"
)

// Identity reads the authenticated user id forwarded by the API
// gateway and stores it in the request context. Token verification
// happens upstream; requests without the header proceed anonymously.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-Id")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			http.Error(w, "invalid user identity", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxutil.WithUserID(r.Context(), userID)))
	})
}
