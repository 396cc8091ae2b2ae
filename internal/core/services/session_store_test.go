package services_test

import (
	"context"
	"testing"
	"time"

	"buildease/internal/adapters/persistence/models"
	"buildease/internal/adapters/persistence/repositories"
	"buildease/internal/core/services"
	"buildease/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *services.SessionStore {
	t.Helper()
	db := newTestDB(t)
	return services.NewSessionStore(repositories.NewSessionRepository(db), 0, logger.Nop())
}

func TestSessionStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour)
	payload := &services.SessionPayload{
		User:   &models.UserResponse{ID: "boss1", Name: "Kim", Role: "boss"},
		Cookie: services.CookieMeta{Expires: &expires},
	}

	require.NoError(t, store.Set(ctx, "sid-1", payload))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "boss1", got.User.ID)
	assert.Equal(t, "boss", got.User.Role)
}

func TestSessionStore_GetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "no-such-sid")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_ExpiredSessionDeletedOnRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expires := time.Now().Add(-time.Minute)
	payload := &services.SessionPayload{
		User:   &models.UserResponse{ID: "gone"},
		Cookie: services.CookieMeta{Expires: &expires},
	}
	require.NoError(t, store.Set(ctx, "stale", payload))

	// First read sees an expired row, deletes it, and reports no session
	got, err := store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Second read finds nothing at all
	got, err = store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_SetReplacesPayload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour)
	first := &services.SessionPayload{
		User:   &models.UserResponse{ID: "u1", Name: "Before"},
		Cookie: services.CookieMeta{Expires: &expires},
	}
	require.NoError(t, store.Set(ctx, "sid-x", first))

	second := &services.SessionPayload{
		User:   &models.UserResponse{ID: "u1", Name: "After"},
		Cookie: services.CookieMeta{Expires: &expires},
	}
	require.NoError(t, store.Set(ctx, "sid-x", second))

	got, err := store.Get(ctx, "sid-x")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "After", got.User.Name)
}

func TestSessionStore_DefaultTTLWhenCookieHasNoExpiry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payload := &services.SessionPayload{
		User: &models.UserResponse{ID: "u2"},
	}
	require.NoError(t, store.Set(ctx, "sid-ttl", payload))

	got, err := store.Get(ctx, "sid-ttl")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSessionStore_DestroyIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour)
	require.NoError(t, store.Set(ctx, "sid-d", &services.SessionPayload{
		User:   &models.UserResponse{ID: "u3"},
		Cookie: services.CookieMeta{Expires: &expires},
	}))

	require.NoError(t, store.Destroy(ctx, "sid-d"))

	got, err := store.Get(ctx, "sid-d")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Destroying a missing session is not an error
	require.NoError(t, store.Destroy(ctx, "sid-d"))
	require.NoError(t, store.Destroy(ctx, "never-existed"))
}

func TestSessionStore_SweepRemovesOnlyExpiredRows(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewSessionRepository(db)
	store := services.NewSessionStore(repo, 0, logger.Nop())
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	require.NoError(t, store.Set(ctx, "old", &services.SessionPayload{
		User: &models.UserResponse{ID: "a"}, Cookie: services.CookieMeta{Expires: &past},
	}))
	require.NoError(t, store.Set(ctx, "live", &services.SessionPayload{
		User: &models.UserResponse{ID: "b"}, Cookie: services.CookieMeta{Expires: &future},
	}))

	store.Sweep()

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
