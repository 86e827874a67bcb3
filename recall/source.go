package recall

import (
	"context"

	"github.com/rushteam/matchkit/core"
)

// Source 表示一个可复用的召回源。当前核心只有资料库按创建时间分页这一种，
// 接口保留是为了让部署方能接入自己的候选池（例如地理围栏预筛后的列表）。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
