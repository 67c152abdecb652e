package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

func receive(t *testing.T, ch chan Event) (Event, bool) {
	t.Helper()
	select {
	case ev := <-ch:
		return ev, true
	case <-time.After(50 * time.Millisecond):
		return Event{}, false
	}
}

func TestHub_PublishActivity(t *testing.T) {
	hub := NewHub()

	admin, closeAdmin := hub.Subscribe("admin-1", session.RoleAdmin)
	defer closeAdmin()
	manager, closeManager := hub.Subscribe("manager-1", session.RoleManager)
	defer closeManager()
	other, closeOther := hub.Subscribe("manager-2", session.RoleManager)
	defer closeOther()

	managerID := "manager-1"
	hub.PublishActivity(&managerID, Event{Event: EventClockIn, Data: "x"})

	ev, ok := receive(t, admin)
	require.True(t, ok)
	assert.Equal(t, "admin-1", ev.UserID)
	assert.Equal(t, EventClockIn, ev.Event)

	ev, ok = receive(t, manager)
	require.True(t, ok)
	assert.Equal(t, "manager-1", ev.UserID)

	_, ok = receive(t, other)
	assert.False(t, ok)
}

func TestHub_PublishActivityWithoutManager(t *testing.T) {
	hub := NewHub()

	admin, closeAdmin := hub.Subscribe("admin-1", session.RoleAdmin)
	defer closeAdmin()
	manager, closeManager := hub.Subscribe("manager-1", session.RoleManager)
	defer closeManager()

	hub.PublishActivity(nil, Event{Event: EventClockOut})

	_, ok := receive(t, admin)
	assert.True(t, ok)
	_, ok = receive(t, manager)
	assert.False(t, ok)
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()

	_, cleanup := hub.Subscribe("u-1", session.RoleEmployee)
	assert.Equal(t, 1, hub.SubscriberCount("u-1"))

	cleanup()
	cleanup()
	assert.Equal(t, 0, hub.SubscriberCount("u-1"))
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_DropsWhenFull(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("u-1", session.RoleAdmin)
	defer cleanup()

	for i := 0; i < cap(ch)+5; i++ {
		hub.Publish("u-1", Event{Event: EventLocation})
	}
	assert.Len(t, ch, cap(ch))
}
