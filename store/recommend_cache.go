package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rushteam/matchkit/core"
)

// RecommendCache 基于 core.Store 实现结果缓存。
// key 为 {前缀}:{算法版本}:{viewerID}；条目自带 ExpiresAt，读路径按它判活，
// 后端 TTL 只负责兜底回收。只靠过期淘汰，没有主动失效。
type RecommendCache struct {
	store core.Store

	// Prefix 空值使用 "rec"
	Prefix string

	// Now 可注入时钟，便于过期测试；默认 time.Now
	Now func() time.Time
}

func NewRecommendCache(s core.Store) *RecommendCache {
	return &RecommendCache{store: s}
}

func (c *RecommendCache) key(viewerID, algorithm string) string {
	p := c.Prefix
	if p == "" {
		p = "rec"
	}
	return p + ":" + algorithm + ":" + viewerID
}

func (c *RecommendCache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Get 返回存活的缓存条目；未命中或已过期返回 (nil, nil)。
func (c *RecommendCache) Get(ctx context.Context, viewerID, algorithm string) (*core.RecommendationCacheEntry, error) {
	data, err := c.store.Get(ctx, c.key(viewerID, algorithm))
	if core.IsStoreNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry core.RecommendationCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	if !entry.ExpiresAt.After(c.now()) {
		return nil, nil
	}
	return &entry, nil
}

// Put 写入缓存条目。同一 viewer 的并发写不做互斥，后写覆盖即可。
func (c *RecommendCache) Put(ctx context.Context, entry *core.RecommendationCacheEntry, ttl time.Duration) error {
	if entry == nil || ttl <= 0 {
		return nil
	}
	entry.ExpiresAt = c.now().Add(ttl)

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key(entry.ViewerID, entry.Algorithm), data, int(ttl.Seconds()))
}

// 确保 RecommendCache 实现了 core.CacheStore 接口
var _ core.CacheStore = (*RecommendCache)(nil)
