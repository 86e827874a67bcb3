package filter

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/rushteam/matchkit/core"
)

// StoreAdapter 将 core.Store 适配为排除源所需的读取接口：
// 拉黑/匹配记录以 JSON 列表存在用户名下的 key 里，决策记录优先走有序集合
// （member 为对方 ID，score 为决策时间 Unix 毫秒），普通 KV 后端退化为
// 带时间戳的 JSON 列表。
type StoreAdapter struct {
	store core.Store

	// Key 前缀，实际 key 为 {前缀}:{userID}；空值使用默认前缀
	BlockPrefix    string
	MatchPrefix    string
	DecisionPrefix string
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

func (a *StoreAdapter) blockKey(userID string) string {
	p := a.BlockPrefix
	if p == "" {
		p = "user:block"
	}
	return p + ":" + userID
}

func (a *StoreAdapter) matchKey(userID string) string {
	p := a.MatchPrefix
	if p == "" {
		p = "user:match"
	}
	return p + ":" + userID
}

func (a *StoreAdapter) decisionKey(userID string) string {
	p := a.DecisionPrefix
	if p == "" {
		p = "user:decision"
	}
	return p + ":" + userID
}

// BlocksInvolving 读取 viewer 任意一侧的拉黑记录。key 不存在视为无记录。
func (a *StoreAdapter) BlocksInvolving(ctx context.Context, userID string) ([]core.Block, error) {
	data, err := a.store.Get(ctx, a.blockKey(userID))
	if core.IsStoreNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var blocks []core.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// MatchesInvolving 读取 viewer 任意一侧的匹配记录。
func (a *StoreAdapter) MatchesInvolving(ctx context.Context, userID string) ([]core.Match, error) {
	data, err := a.store.Get(ctx, a.matchKey(userID))
	if core.IsStoreNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var matches []core.Match
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// RecentDecisions 读取 viewer 在 since 之后作出的决策。
func (a *StoreAdapter) RecentDecisions(ctx context.Context, userID string, since time.Time) ([]core.Decision, error) {
	key := a.decisionKey(userID)

	// 优先走有序集合：按决策时间区间取对方 ID
	if kv, ok := a.store.(core.KeyValueStore); ok {
		members, err := kv.ZRangeByScore(ctx, key, float64(since.UnixMilli()), math.MaxFloat64)
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		out := make([]core.Decision, 0, len(members))
		for _, m := range members {
			out = append(out, core.Decision{TargetID: m})
		}
		return out, nil
	}

	// 普通 KV：带时间戳的 JSON 列表，窗口外的条目过滤掉
	data, err := a.store.Get(ctx, key)
	if core.IsStoreNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var decisions []core.Decision
	if err := json.Unmarshal(data, &decisions); err != nil {
		return nil, err
	}
	out := decisions[:0]
	for _, d := range decisions {
		if d.DecidedAt.Before(since) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// 确保 StoreAdapter 实现了三个排除源接口
var _ core.BlockStore = (*StoreAdapter)(nil)
var _ core.MatchStore = (*StoreAdapter)(nil)
var _ core.DecisionStore = (*StoreAdapter)(nil)
