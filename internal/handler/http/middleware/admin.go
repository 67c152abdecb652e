package middleware

import (
	"net/http"

	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !sess.IsAdmin() {
			response.HandleError(w, profile.ErrAdminAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
