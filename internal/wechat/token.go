package wechat

import (
	"context"
	"time"

	"wechat_gateway/pkg/cache"
	"wechat_gateway/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// 令牌缓存键，读写两侧统一使用同一个常量
const (
	cacheKeyAccessToken = "access_token"
	cacheKeyJsTicket    = "jsapi_ticket"
)

// tokenFetch 拉取一枚新令牌，返回令牌值和平台给出的有效期
type tokenFetch func(ctx context.Context) (value string, ttl time.Duration, err error)

// tokenCache 短时令牌缓存
// 接口调用额度有限（msg_sec_check 为 4000 次/分钟、200 万次/天），
// 未过期一律走缓存；同名令牌的并发未命中合并为一次拉取。
type tokenCache struct {
	store cache.CacheService
	group singleflight.Group
	log   *zap.Logger
}

func newTokenCache(store cache.CacheService, log *zap.Logger) *tokenCache {
	return &tokenCache{store: store, log: log}
}

// getOrFetch 命中且未过期直接返回；未命中时拉取并写回
// 拉取失败只向上传播错误，不触碰已有缓存条目。
func (c *tokenCache) getOrFetch(ctx context.Context, name string, fetch tokenFetch) (string, error) {
	if v, err := c.store.Get(ctx, name); err == nil && v != "" {
		metrics.Default.TokenCacheHit(name)
		return v, nil
	}
	metrics.Default.TokenCacheMiss(name)

	v, err, _ := c.group.Do(name, func() (interface{}, error) {
		// 竞争的请求可能已经写回
		if v, err := c.store.Get(ctx, name); err == nil && v != "" {
			return v, nil
		}

		value, ttl, err := fetch(ctx)
		if err != nil {
			return "", err
		}

		// 写缓存失败不阻断调用，代价是下次重新拉取
		if err := c.store.Set(ctx, name, value, ttl); err != nil {
			metrics.Default.TokenCacheWriteError()
			c.log.Warn("token cache write failed",
				zap.String("name", name),
				zap.Error(err),
			)
		}
		return value, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
