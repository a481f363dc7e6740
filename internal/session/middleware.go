package session

import (
	"net/http"
	"strings"

	"attesta/internal/platform/middleware"
	"attesta/internal/transport/http/shared"
	dErrors "attesta/pkg/domain-errors"
)

// Middleware authenticates requests with a Bearer session token and puts the
// holder context on the request for downstream handlers.
func Middleware(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing session token"))
				return
			}
			holder, err := service.Validate(r.Context(), token)
			if err != nil {
				shared.WriteError(w, err)
				return
			}
			ctx := middleware.WithHolder(r.Context(), holder.HolderID.String(), holder.SessionID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
