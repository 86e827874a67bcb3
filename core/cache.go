package core

import (
	"context"
	"time"
)

// CandidateSummary 是进入响应体与结果缓存的轻量候选人摘要。
type CandidateSummary struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	City         string    `json:"city"`
	Images       []string  `json:"images"`
	Score        int       `json:"score"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	Plan         string    `json:"plan"`
}

// RecommendationCacheEntry 是一次完整排序 pass 的缓存快照。
// 只为规范首页（默认页大小、无游标）创建；Payload 带超过一页的扩展切片。
// 只靠过期淘汰，引擎从不主动失效；同一 viewer 的并发写以后写覆盖为准。
type RecommendationCacheEntry struct {
	ViewerID  string             `json:"viewer_id"`
	Algorithm string             `json:"algorithm"`
	Seed      string             `json:"seed"`
	Diversity string             `json:"diversity"`
	ExpiresAt time.Time          `json:"expires_at"`
	Payload   []CandidateSummary `json:"payload"`
}

// CacheStore 是结果缓存的领域接口。
//
// Get 未命中（含已过期）返回 (nil, nil)；error 只表达后端故障，
// 调用方应把故障当作未命中降级处理。
type CacheStore interface {
	Get(ctx context.Context, viewerID, algorithm string) (*RecommendationCacheEntry, error)
	Put(ctx context.Context, entry *RecommendationCacheEntry, ttl time.Duration) error
}
