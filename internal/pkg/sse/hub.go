package sse

import (
	"sync"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

// Event names published on the activity stream.
const (
	EventClockIn          = "clock_in"
	EventClockOut         = "clock_out"
	EventLocation         = "location"
	EventScheduleConflict = "schedule_conflict"
	EventVarianceAlert    = "variance_alert"
	EventSiteMessage      = "site_message"
	EventStaleEntry       = "stale_entry"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	UserID string
	Event  string
	Data   interface{}
}

type subscriber struct {
	role session.Role
	subs map[chan Event]struct{}
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]*subscriber),
	}
}

// Subscribe registers a new subscriber for a user and returns the event channel and cleanup function
func (h *Hub) Subscribe(userID string, role session.Role) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)

	s := h.subscribers[userID]
	if s == nil {
		s = &subscriber{subs: make(map[chan Event]struct{})}
		h.subscribers[userID] = s
	}
	s.role = role
	s.subs[ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(s.subs, ch)
			close(ch)
			if len(s.subs) == 0 {
				delete(h.subscribers, userID)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a specific user
func (h *Hub) Publish(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.publishLocked(userID, event)
}

func (h *Hub) publishLocked(userID string, event Event) {
	s, ok := h.subscribers[userID]
	if !ok {
		return
	}
	event.UserID = userID
	for ch := range s.subs {
		select {
		case ch <- event:
		default:
			// Slow consumer; drop rather than block publishers.
		}
	}
}

// PublishToMany sends an event to multiple users
func (h *Hub) PublishToMany(userIDs []string, event Event) {
	for _, userID := range userIDs {
		h.Publish(userID, event)
	}
}

// PublishToRole sends an event to every connected user with the given role.
func (h *Hub) PublishToRole(role session.Role, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, s := range h.subscribers {
		if s.role == role {
			h.publishLocked(userID, event)
		}
	}
}

// PublishActivity delivers a site activity event to all admins and, when set,
// the site's manager. Each user receives it once.
func (h *Hub) PublishActivity(managerID *string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, s := range h.subscribers {
		if s.role == session.RoleAdmin || (managerID != nil && *managerID == userID) {
			h.publishLocked(userID, event)
		}
	}
}

// SubscriberCount returns the number of active subscribers for a user
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if s, ok := h.subscribers[userID]; ok {
		return len(s.subs)
	}
	return 0
}

// TotalSubscribers returns the total number of active subscribers across all users
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, s := range h.subscribers {
		total += len(s.subs)
	}
	return total
}
