package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/feature"
	"github.com/rushteam/matchkit/filter"
	"github.com/rushteam/matchkit/pipeline"
	"github.com/rushteam/matchkit/rank"
	"github.com/rushteam/matchkit/recall"
	"github.com/rushteam/matchkit/rerank"
)

// AlgorithmVersion 标识当前排序算法，参与缓存 key：算法升级后旧缓存
// 自然失效（读不到），不需要主动清理。
const AlgorithmVersion = "v1.bands"

// DiversityPolicy 是当前唯一的多样性策略标识。
const DiversityPolicy = "city"

const (
	DefaultLimit = 20
	MaxLimit     = 50

	// CacheExtent 是首页缓存里物化的扩展切片长度：比一页多缓存几页，
	// 窗口内的浅翻页理论上都能吃到。当前翻页路径只有首页查缓存，
	// 这个不对称是既有行为，保留（见 DESIGN.md）。
	CacheExtent = 100

	DefaultCacheTTL = 10 * time.Minute
)

// Request 是一次排序请求。ViewerID 由上游会话解析好传入。
type Request struct {
	ViewerID string
	Limit    int
	Cursor   string
}

// Meta 是响应的执行元信息。
type Meta struct {
	Cached     bool   `json:"cached"`
	Algorithm  string `json:"algorithm"`
	Diversity  string `json:"diversity"`
	DurationMs int64  `json:"durationMs"`
	Seed       string `json:"seed,omitempty"`
}

// Response 是一次排序请求的完整结果。
type Response struct {
	Recommendations []core.CandidateSummary `json:"recommendations"`
	Cursor          *string                 `json:"cursor"`
	HasMore         bool                    `json:"hasMore"`
	Count           int                     `json:"count"`
	Meta            Meta                    `json:"meta"`
}

// Engine 把召回、排除、打分、分带乱序、多样性、分页和结果缓存
// 串成一次无状态的排序 pass。依赖全部显式注入，没有模块级可变状态。
type Engine struct {
	Profiles core.ProfileRepository

	// Resolver 解析排除集；nil 时只排除 viewer 自己
	Resolver *filter.Resolver

	// Cache 为 nil 时关闭结果缓存
	Cache core.CacheStore

	// Activity 为 nil 时跳过活跃度特征补齐
	Activity feature.ActivityProvider

	// Rules 是部署级 CEL 准入规则，空列表表示不设规则
	Rules []string

	// PoolSize <=0 时取 recall.DefaultPoolSize
	PoolSize int

	// CacheTTL <=0 时取 DefaultCacheTTL
	CacheTTL time.Duration

	// Logger 记录降级与缓存故障；nil 时静默
	Logger *slog.Logger

	// Now 可注入时钟，便于测试；默认 time.Now
	Now func() time.Time
}

// Recommend 执行一次排序请求。
//
// 错误面收敛为两类：viewer 无资料返回 core.ErrProfileNotFound，
// 游标非法返回 INVALID_INPUT；其余打分/重排失败原样上抛、整体中止，
// 绝不把残缺的排序结果按成功返回。排除查询与缓存的故障都在内部降级。
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	limit := clampLimit(req.Limit)

	// 只有规范首页（无游标、默认页大小）才查缓存
	canonical := req.Cursor == "" && limit == DefaultLimit
	if canonical && e.Cache != nil {
		if resp := e.fromCache(ctx, req.ViewerID, limit, start); resp != nil {
			return resp, nil
		}
	}

	viewer, err := e.Profiles.GetProfile(ctx, req.ViewerID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, core.ErrProfileNotFound
	}

	cursorTime, err := DecodeCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	pool := e.PoolSize
	if pool <= 0 {
		pool = recall.DefaultPoolSize
	}

	var (
		set     core.ExclusionSet
		lookups []filter.Lookup
	)
	if e.Resolver != nil {
		set, lookups = e.Resolver.Resolve(ctx, req.ViewerID)
	} else {
		set = make(core.ExclusionSet, 1)
		set.Add(req.ViewerID)
	}
	e.logDegraded(req.ViewerID, lookups)

	rctx := &core.RecommendContext{
		ViewerID:   req.ViewerID,
		Viewer:     viewer,
		Cursor:     req.Cursor,
		CursorTime: cursorTime,
		PoolSize:   pool,
	}

	filters := []filter.Filter{filter.NewExcluded(set)}
	if len(e.Rules) > 0 {
		filters = append(filters, filter.NewRule(e.Rules...))
	}

	nodes := []pipeline.Node{
		&recall.Profiles{Repo: e.Profiles, PoolSize: pool},
	}
	if e.Activity != nil {
		nodes = append(nodes, &feature.EnrichNode{Provider: e.Activity})
	}
	nodes = append(nodes,
		&filter.Node{Filters: filters},
		&rank.Signals{Now: e.Now},
		&rerank.BandShuffle{},
		&rerank.CityDiversity{},
		&rerank.TopN{N: CacheExtent},
	)

	p := &pipeline.Pipeline{Nodes: nodes}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInternalError, "engine: ranking failed: "+err.Error())
	}

	seedHex := ""
	if lbl, ok := rctx.GetLabel(rerank.SeedLabel); ok {
		seedHex = lbl.Value
	}

	page, nextCursor, hasMore := paginate(items, limit)
	summaries := summarize(page)

	if canonical && e.Cache != nil {
		e.writeCache(ctx, req.ViewerID, seedHex, items)
	}

	return &Response{
		Recommendations: summaries,
		Cursor:          nextCursor,
		HasMore:         hasMore,
		Count:           len(summaries),
		Meta: Meta{
			Cached:     false,
			Algorithm:  AlgorithmVersion,
			Diversity:  DiversityPolicy,
			DurationMs: time.Since(start).Milliseconds(),
			Seed:       seedHex,
		},
	}, nil
}

// fromCache 尝试用缓存条目直接回答规范首页请求；未命中或故障返回 nil。
func (e *Engine) fromCache(ctx context.Context, viewerID string, limit int, start time.Time) *Response {
	entry, err := e.Cache.Get(ctx, viewerID, AlgorithmVersion)
	if err != nil {
		// 缓存故障按未命中处理，绝不上抛
		if e.Logger != nil {
			e.Logger.Warn("recommend cache read failed", "viewer", viewerID, "err", err)
		}
		return nil
	}
	if entry == nil || len(entry.Payload) == 0 {
		return nil
	}

	page, nextCursor, hasMore := paginateSummaries(entry.Payload, limit)
	return &Response{
		Recommendations: page,
		Cursor:          nextCursor,
		HasMore:         hasMore,
		Count:           len(page),
		Meta: Meta{
			Cached:     true,
			Algorithm:  entry.Algorithm,
			Diversity:  entry.Diversity,
			DurationMs: time.Since(start).Milliseconds(),
			Seed:       entry.Seed,
		},
	}
}

// writeCache 物化扩展切片，写失败只记日志（fire-and-forget）。
func (e *Engine) writeCache(ctx context.Context, viewerID, seedHex string, items []*core.Item) {
	payload := items
	if len(payload) > CacheExtent {
		payload = payload[:CacheExtent]
	}
	if len(payload) == 0 {
		return
	}

	ttl := e.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	entry := &core.RecommendationCacheEntry{
		ViewerID:  viewerID,
		Algorithm: AlgorithmVersion,
		Seed:      seedHex,
		Diversity: DiversityPolicy,
		Payload:   summarize(payload),
	}
	if err := e.Cache.Put(ctx, entry, ttl); err != nil && e.Logger != nil {
		e.Logger.Warn("recommend cache write failed", "viewer", viewerID, "err", err)
	}
}

func (e *Engine) logDegraded(viewerID string, lookups []filter.Lookup) {
	if e.Logger == nil {
		return
	}
	for _, lk := range lookups {
		if lk.Degraded {
			e.Logger.Warn("exclusion lookup degraded",
				"viewer", viewerID, "source", lk.Source, "err", lk.Err)
		}
	}
}

// clampLimit：0 视为未指定取默认值，其余收敛到 [1, MaxLimit]。
func clampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultLimit
	case limit < 1:
		return 1
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
