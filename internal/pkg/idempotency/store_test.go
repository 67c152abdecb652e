package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "idemp:/api/v1/time-entries/clock-in:u-1:abc", Key("/api/v1/time-entries/clock-in", "u-1", "abc"))
}

func TestLookup_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStore(db, time.Hour)

	mock.ExpectGet("k").RedisNil()

	_, ok, err := store.Lookup(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookup_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStore(db, time.Hour)

	stored, _ := json.Marshal(Response{Status: 201, ContentType: "application/json", Body: []byte(`{"ok":true}`)})
	mock.ExpectGet("k").SetVal(string(stored))

	resp, ok, err := store.Lookup(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 201, resp.Status)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestLookup_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStore(db, time.Hour)

	mock.ExpectGet("k").SetErr(errors.New("connection refused"))

	_, _, err := store.Lookup(context.Background(), "k")
	assert.Error(t, err)
}

func TestAcquire(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStore(db, time.Hour)

	mock.ExpectSetNX("k:lock", "locked", lockTTL).SetVal(true)
	mock.ExpectSetNX("k:lock", "locked", lockTTL).SetVal(false)

	ok, err := store.Acquire(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Acquire(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_StoresAndUnlocks(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewStore(db, time.Hour)

	resp := Response{Status: 200, ContentType: "application/json", Body: []byte(`{}`)}
	data, _ := json.Marshal(resp)
	mock.ExpectSet("k", data, time.Hour).SetVal("OK")
	mock.ExpectDel("k:lock").SetVal(1)

	require.NoError(t, store.Save(context.Background(), "k", resp))
	assert.NoError(t, mock.ExpectationsWereMet())
}
