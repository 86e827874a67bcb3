package feature

import (
	"context"
	"time"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/pipeline"
	"github.com/rushteam/matchkit/pkg/utils"
)

// EnrichNode 是活跃度特征注入节点：对缺失 LastActiveAt 的候选人，
// 批量向特征服务要一次在线活跃时间。
//
// 失败静默降级：特征服务超时/出错只意味着活跃度信号缺席，
// 排序照常进行。
type EnrichNode struct {
	Provider ActivityProvider

	// Timeout 是单次批量查询的超时，0 表示跟随请求 context
	Timeout time.Duration
}

func (n *EnrichNode) Name() string        { return "feature.activity" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Provider == nil || len(items) == 0 {
		return items, nil
	}

	missing := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil || it.Candidate == nil {
			continue
		}
		if it.Candidate.LastActiveAt.IsZero() {
			missing = append(missing, it.Candidate.ID)
		}
	}
	if len(missing) == 0 {
		return items, nil
	}

	fctx := ctx
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	actives, err := n.Provider.BatchLastActive(fctx, missing)
	if err != nil || len(actives) == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil || it.Candidate == nil || !it.Candidate.LastActiveAt.IsZero() {
			continue
		}
		if t, ok := actives[it.Candidate.ID]; ok && !t.IsZero() {
			it.Candidate.LastActiveAt = t
			it.PutLabel("feature_enriched", utils.Label{
				Value:  n.Provider.Name(),
				Source: "postprocess",
			})
		}
	}
	return items, nil
}
