package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/timeguard/timeguard-api/internal/domain/auth"
	"github.com/timeguard/timeguard-api/internal/handler/http/response"
	"github.com/timeguard/timeguard-api/internal/pkg/jwt"
	"github.com/timeguard/timeguard-api/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

// ActivityHandler serves the live activity stream: clock events, location
// samples, conflicts and alerts for managers and admins, and personal events
// such as stale entry notices for everyone.
type ActivityHandler interface {
	GetToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type activityHandlerImpl struct {
	hub        *sse.Hub
	jwtService jwt.Service
}

func NewActivityHandler(hub *sse.Hub, jwtService jwt.Service) ActivityHandler {
	return &activityHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
	}
}

// GetToken generates a short-lived token for SSE connections
func (h *activityHandlerImpl) GetToken(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(sess)
	if err != nil {
		slog.Error("Failed to generate SSE token", "user_id", sess.UserID, "error", err)
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, auth.SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles the SSE connection. EventSource cannot send headers, so the
// token comes in the query string.
func (h *activityHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	sess, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(sess.UserID, sess.Role)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", sess.UserID)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("Failed to encode activity event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
