package wechat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wechat_gateway/pkg/cache"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestTokenCache() *tokenCache {
	return newTokenCache(cache.NewMemoryCache(), zap.NewNop())
}

func TestTokenCacheGetOrFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("Cache hit avoids fetch", func(t *testing.T) {
		tc := newTestTokenCache()
		var calls int32
		fetch := func(ctx context.Context) (string, time.Duration, error) {
			atomic.AddInt32(&calls, 1)
			return "token-1", time.Minute, nil
		}

		v1, err := tc.getOrFetch(ctx, "access_token", fetch)
		assert.NoError(t, err)
		assert.Equal(t, "token-1", v1)

		v2, err := tc.getOrFetch(ctx, "access_token", fetch)
		assert.NoError(t, err)
		assert.Equal(t, "token-1", v2)

		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("Expiry triggers refetch", func(t *testing.T) {
		tc := newTestTokenCache()
		var calls int32
		fetch := func(ctx context.Context) (string, time.Duration, error) {
			n := atomic.AddInt32(&calls, 1)
			if n == 1 {
				return "first", 20 * time.Millisecond, nil
			}
			return "second", time.Minute, nil
		}

		v, err := tc.getOrFetch(ctx, "access_token", fetch)
		assert.NoError(t, err)
		assert.Equal(t, "first", v)

		time.Sleep(30 * time.Millisecond)

		v, err = tc.getOrFetch(ctx, "access_token", fetch)
		assert.NoError(t, err)
		assert.Equal(t, "second", v)
		assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	})

	t.Run("Fetch failure propagates and leaves store untouched", func(t *testing.T) {
		tc := newTestTokenCache()
		boom := errors.New("platform down")

		_, err := tc.getOrFetch(ctx, "access_token", func(ctx context.Context) (string, time.Duration, error) {
			return "", 0, boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = tc.store.Get(ctx, "access_token")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)

		// 恢复后的下一次调用正常取到令牌
		v, err := tc.getOrFetch(ctx, "access_token", func(ctx context.Context) (string, time.Duration, error) {
			return "recovered", time.Minute, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "recovered", v)
	})

	t.Run("Concurrent misses collapse into one fetch", func(t *testing.T) {
		tc := newTestTokenCache()
		var calls int32
		fetch := func(ctx context.Context) (string, time.Duration, error) {
			atomic.AddInt32(&calls, 1)
			time.Sleep(20 * time.Millisecond)
			return "shared", time.Minute, nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := tc.getOrFetch(ctx, "jsapi_ticket", fetch)
				assert.NoError(t, err)
				assert.Equal(t, "shared", v)
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("Different names use separate entries", func(t *testing.T) {
		tc := newTestTokenCache()
		_, err := tc.getOrFetch(ctx, "access_token", func(ctx context.Context) (string, time.Duration, error) {
			return "tok", time.Minute, nil
		})
		assert.NoError(t, err)

		v, err := tc.getOrFetch(ctx, "jsapi_ticket", func(ctx context.Context) (string, time.Duration, error) {
			return "ticket", time.Minute, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "ticket", v)
	})
}

// failingStore 写入永远失败的缓存，验证令牌仍然可用
type failingStore struct {
	cache.CacheService
}

func (s *failingStore) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return errors.New("store unavailable")
}

func TestTokenCacheWriteFailureStillReturnsToken(t *testing.T) {
	tc := newTokenCache(&failingStore{cache.NewMemoryCache()}, zap.NewNop())

	v, err := tc.getOrFetch(context.Background(), "access_token", func(ctx context.Context) (string, time.Duration, error) {
		return "fresh", time.Minute, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "fresh", v)
}
