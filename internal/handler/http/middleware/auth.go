package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/timeguard/timeguard-api/internal/domain/auth"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
	"github.com/timeguard/timeguard-api/internal/pkg/jwt"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

// AuthRequired accepts only access tokens and stores the caller's session in the request context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TypeAccess || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			sess, err := jwt.SessionFromClaims(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		}
		return http.HandlerFunc(hfn)
	}
}
