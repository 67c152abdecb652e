package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/timeguard/timeguard-api/internal/handler/http/response"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

// currentSession returns the caller's session or writes a 401.
func currentSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return session.Session{}, false
	}
	return sess, true
}

// decodeJSON decodes the body into dst or writes a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Warn(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// queryString returns nil for an absent or empty parameter.
func queryString(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}

// queryBool returns nil for an absent or unparsable parameter.
func queryBool(r *http.Request, key string) *bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &b
}
