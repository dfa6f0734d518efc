package middleware

import (
	"net/http"

	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

// ClientMeta stores the caller's address and user agent in the request
// context for audit records.
func ClientMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := pkghttp.ContextWithClientMeta(r.Context(), pkghttp.ExtractClientMeta(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
