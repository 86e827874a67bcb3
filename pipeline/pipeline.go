package pipeline

import (
	"context"

	"github.com/rushteam/matchkit/core"
)

// Pipeline 是 Matchkit 的核心抽象：把一次排序 pass 拆成可组合的 Node 链。
// 任一 Node 返回 error 即整体中止，不返回部分结果。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
