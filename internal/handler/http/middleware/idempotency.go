package middleware

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
	"github.com/timeguard/timeguard-api/internal/pkg/idempotency"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

const IdempotencyHeader = "Idempotency-Key"

// recorder tees the response so it can be stored after the handler returns.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rec *recorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *recorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	rec.body.Write(b)
	return rec.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key on POST
// requests. A nil store disables the cache; services still dedupe clock
// requests on the key stored with the time entry.
func Idempotency(store *idempotency.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.Header.Get(IdempotencyHeader)
			if store == nil || clientKey == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := session.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			ctx := r.Context()
			route := r.URL.Path
			if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			key := idempotency.Key(route, sess.UserID, clientKey)

			cached, found, err := store.Lookup(ctx, key)
			if err != nil {
				slog.Warn("idempotency lookup failed, executing request", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if found {
				w.Header().Set("Content-Type", cached.ContentType)
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(cached.Status)
				w.Write(cached.Body)
				return
			}

			acquired, err := store.Acquire(ctx, key)
			if err != nil {
				slog.Warn("idempotency lock failed, executing request", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				response.Fail(w, http.StatusConflict, "PROCESSING", "A request with this Idempotency-Key is still being processed", nil)
				return
			}

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// Only successful responses are replayed; failures may be retried.
			if rec.status >= 200 && rec.status < 300 {
				err = store.Save(ctx, key, idempotency.Response{
					Status:      rec.status,
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.body.Bytes(),
				})
			} else {
				err = store.Release(ctx, key)
			}
			if err != nil {
				slog.Error("idempotency store failed", "key", key, "error", err)
			}
		})
	}
}
