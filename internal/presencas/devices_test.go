package presencas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashTokenDeterministic(t *testing.T) {
	a := HashToken("terminal-token")
	b := HashToken("terminal-token")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, HashToken("other-token"))
}

func cacheDevice(t *testing.T, rdb *redis.Client, token string, device Device) {
	t.Helper()
	raw, err := json.Marshal(device)
	require.NoError(t, err)
	require.NoError(t, rdb.Set(context.Background(), deviceCacheKey(HashToken(token)), raw, time.Minute).Err())
}

func TestAuthenticateServesFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	// repo is nil: a cache hit must never reach the database.
	auth := NewDeviceAuthenticator(nil, rdb, nil)

	want := Device{
		ID:            uuid.New(),
		InstitutionID: uuid.New(),
		Name:          "portaria-1",
		TokenHash:     HashToken("terminal-token"),
		Active:        true,
	}
	cacheDevice(t, rdb, "terminal-token", want)

	got, err := auth.Authenticate(context.Background(), "terminal-token")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.InstitutionID, got.InstitutionID)
}

func TestAuthenticateRejectsEmptyToken(t *testing.T) {
	auth := NewDeviceAuthenticator(nil, nil, nil)
	_, err := auth.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrDeviceToken)
}

func TestInvalidateDropsCacheEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	auth := NewDeviceAuthenticator(nil, rdb, nil)
	hash := HashToken("terminal-token")
	cacheDevice(t, rdb, "terminal-token", Device{ID: uuid.New(), TokenHash: hash, Active: true})

	auth.Invalidate(context.Background(), hash)
	assert.False(t, mr.Exists(deviceCacheKey(hash)))
}

func TestMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	auth := NewDeviceAuthenticator(nil, rdb, nil)
	device := Device{ID: uuid.New(), InstitutionID: uuid.New(), Active: true}
	cacheDevice(t, rdb, "terminal-token", device)

	var captured *Device
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d, ok := DeviceFromContext(r.Context()); ok {
			captured = &d
		}
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/presencas/dispositivo", nil)
	rr := httptest.NewRecorder()
	auth.Middleware(next).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "missing token")

	req = httptest.NewRequest(http.MethodPost, "/presencas/dispositivo", nil)
	req.Header.Set(DeviceTokenHeader, "terminal-token")
	rr = httptest.NewRecorder()
	auth.Middleware(next).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, captured)
	assert.Equal(t, device.ID, captured.ID)
}
