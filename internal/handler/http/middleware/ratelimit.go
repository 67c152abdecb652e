package middleware

import (
	"net/http"
	"sync"

	"github.com/timeguard/timeguard-api/internal/handler/http/response"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"golang.org/x/time/rate"
)

// UserRateLimiter keeps one token bucket per user.
type UserRateLimiter struct {
	users map[string]*rate.Limiter
	mu    sync.Mutex
	r     rate.Limit
	b     int
}

func NewUserRateLimiter(r rate.Limit, b int) *UserRateLimiter {
	return &UserRateLimiter{
		users: make(map[string]*rate.Limiter),
		r:     r,
		b:     b,
	}
}

func (l *UserRateLimiter) limiter(userID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.users[userID]
	if !ok {
		limiter = rate.NewLimiter(l.r, l.b)
		l.users[userID] = limiter
	}
	return limiter
}

// Limit rejects requests once the caller's bucket is empty. Requests without a
// session pass through; AuthRequired runs first on every limited route.
func (l *UserRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := session.FromContext(r.Context())
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if !l.limiter(sess.UserID).Allow() {
			response.TooManyRequests(w, "Too many requests, please slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
