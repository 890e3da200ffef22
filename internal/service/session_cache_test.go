package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/contactbook/api/internal/errors"
	"github.com/contactbook/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(store *fakeUserStore, email string, confirmed bool) *model.User {
	user := &model.User{
		Username:  "alice",
		Email:     email,
		Password:  "hash",
		Confirmed: confirmed,
	}
	_ = store.Create(context.Background(), user)
	return user
}

func TestSessionCacheMissReadsThroughAndStores(t *testing.T) {
	cache := newFakeCache()
	store := newFakeUserStore()
	seedUser(store, "alice@example.com", true)

	sessions := NewSessionCache(cache, store, 900*time.Second)

	user, err := sessions.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, 1, store.lookupCount())

	// Snapshot written with the configured TTL
	require.True(t, cache.has("user:alice@example.com"))
	assert.Equal(t, 900*time.Second, cache.ttls["user:alice@example.com"])
}

func TestSessionCacheHitSkipsDatabase(t *testing.T) {
	cache := newFakeCache()
	store := newFakeUserStore()
	seedUser(store, "alice@example.com", true)

	sessions := NewSessionCache(cache, store, 900*time.Second)

	_, err := sessions.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)

	user, err := sessions.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, 1, store.lookupCount(), "second resolve must be served from cache")
}

func TestSessionCacheUnknownUser(t *testing.T) {
	sessions := NewSessionCache(newFakeCache(), newFakeUserStore(), time.Minute)

	_, err := sessions.Resolve(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestSessionCacheDegradesWhenRedisDown(t *testing.T) {
	cache := newFakeCache()
	cache.failGet = true
	cache.failSet = true
	store := newFakeUserStore()
	seedUser(store, "alice@example.com", true)

	sessions := NewSessionCache(cache, store, time.Minute)

	user, err := sessions.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestSessionCacheCorruptEntryRefreshes(t *testing.T) {
	cache := newFakeCache()
	store := newFakeUserStore()
	seedUser(store, "alice@example.com", true)
	cache.put("user:alice@example.com", []byte("{not json"))

	sessions := NewSessionCache(cache, store, time.Minute)

	user, err := sessions.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, 1, store.lookupCount())
}

func TestSessionCacheStalenessIsBoundedByTTLOnly(t *testing.T) {
	cache := newFakeCache()
	store := newFakeUserStore()
	seedUser(store, "alice@example.com", false)

	sessions := NewSessionCache(cache, store, time.Minute)

	user, err := sessions.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.False(t, user.Confirmed)
	require.True(t, cache.has("user:alice@example.com"))

	// Profile mutations do not invalidate the cached snapshot; the stale
	// entry is served until the TTL expires.
	require.NoError(t, store.ConfirmEmail(context.Background(), "alice@example.com"))

	user, err = sessions.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.False(t, user.Confirmed)
	assert.Equal(t, 1, store.lookupCount())
}
