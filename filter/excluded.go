package filter

import (
	"context"

	"github.com/rushteam/matchkit/core"
)

// Excluded 过滤排除集内的候选人：自己、拉黑（双向）、已匹配、近期已决策。
// 排除集由 Resolver 在请求开始时解析一次，这里只做集合查询。
type Excluded struct {
	Set core.ExclusionSet
}

func NewExcluded(set core.ExclusionSet) *Excluded {
	return &Excluded{Set: set}
}

func (f *Excluded) Name() string {
	return "filter.excluded"
}

func (f *Excluded) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || item.Candidate == nil {
		return true, nil
	}
	// viewer 自己无条件排除，即便排除集因降级不完整
	if rctx != nil && rctx.ViewerID != "" && item.Candidate.ID == rctx.ViewerID {
		return true, nil
	}
	if f.Set == nil {
		return false, nil
	}
	return f.Set.Contains(item.Candidate.ID), nil
}
