package presencas

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/dsicola/dsicola-sub019/internal/platform/httpx"
)

// DeviceTokenHeader carries the terminal credential on ingestion requests.
const DeviceTokenHeader = "X-Device-Token"

const deviceCacheTTL = 5 * time.Minute

// DeviceAuthenticator resolves biometric terminals from their token.
// Lookups are cached in Redis and collapsed with singleflight, since a
// terminal posts every punch with the same token.
type DeviceAuthenticator struct {
	repo   *Repository
	redis  *redis.Client
	group  singleflight.Group
	logger *slog.Logger
}

// NewDeviceAuthenticator constructs an authenticator.
func NewDeviceAuthenticator(repo *Repository, rdb *redis.Client, logger *slog.Logger) *DeviceAuthenticator {
	return &DeviceAuthenticator{repo: repo, redis: rdb, logger: logger}
}

type deviceContextKey struct{}

// DeviceFromContext extracts the authenticated device from context.
func DeviceFromContext(ctx context.Context) (Device, bool) {
	d, ok := ctx.Value(deviceContextKey{}).(Device)
	return d, ok
}

// Authenticate resolves the device for a raw token.
func (a *DeviceAuthenticator) Authenticate(ctx context.Context, token string) (Device, error) {
	if token == "" {
		return Device{}, ErrDeviceToken
	}
	hash := HashToken(token)
	if device, ok := a.cached(ctx, hash); ok {
		return device, nil
	}
	v, err, _ := a.group.Do(hash, func() (any, error) {
		device, err := a.repo.FindDeviceByTokenHash(ctx, hash)
		if err != nil {
			return Device{}, err
		}
		a.cache(ctx, hash, device)
		return device, nil
	})
	if err != nil {
		return Device{}, err
	}
	return v.(Device), nil
}

// Invalidate drops a device's cache entry, used on revocation.
func (a *DeviceAuthenticator) Invalidate(ctx context.Context, tokenHash string) {
	if a.redis == nil {
		return
	}
	if err := a.redis.Del(ctx, deviceCacheKey(tokenHash)).Err(); err != nil && a.logger != nil {
		a.logger.Warn("device cache invalidate", slog.Any("error", err))
	}
}

// Middleware authenticates the request by its X-Device-Token header and
// stashes the device in context. Unknown tokens get a uniform 401.
func (a *DeviceAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		device, err := a.Authenticate(r.Context(), r.Header.Get(DeviceTokenHeader))
		if err != nil {
			if errors.Is(err, ErrDeviceToken) {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid device token")
				return
			}
			if a.logger != nil {
				a.logger.Error("device auth", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), deviceContextKey{}, device)))
	})
}

func deviceCacheKey(hash string) string {
	return "presencas:device:" + hash
}

func (a *DeviceAuthenticator) cached(ctx context.Context, hash string) (Device, bool) {
	if a.redis == nil {
		return Device{}, false
	}
	raw, err := a.redis.Get(ctx, deviceCacheKey(hash)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && a.logger != nil {
			a.logger.Warn("device cache get", slog.Any("error", err))
		}
		return Device{}, false
	}
	var device Device
	if err := json.Unmarshal(raw, &device); err != nil {
		return Device{}, false
	}
	return device, true
}

func (a *DeviceAuthenticator) cache(ctx context.Context, hash string, device Device) {
	if a.redis == nil {
		return
	}
	raw, err := json.Marshal(device)
	if err != nil {
		return
	}
	if err := a.redis.Set(ctx, deviceCacheKey(hash), raw, deviceCacheTTL).Err(); err != nil && a.logger != nil {
		a.logger.Warn("device cache set", slog.Any("error", err))
	}
}
