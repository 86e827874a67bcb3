package recall

import (
	"context"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/pipeline"
	"github.com/rushteam/matchkit/pkg/utils"
)

// DefaultPoolSize 是单次排序 pass 的候选池上限。池子有界，
// 打分与重排都按这个量级做单线程处理。
const DefaultPoolSize = 200

// Profiles 是资料库召回源：从游标时间点之后按创建时间升序超量拉取候选池。
// Profiles 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Profiles struct {
	Repo core.ProfileRepository

	// PoolSize 是超量拉取上限，<=0 时取 DefaultPoolSize
	PoolSize int
}

func (r *Profiles) Name() string        { return "recall.profiles" }
func (r *Profiles) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Profiles) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
// 这里顺手做两件保证不变式的事：按 ID 去重、剔除 viewer 自己。
func (r *Profiles) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Repo == nil {
		return nil, nil
	}

	pool := r.PoolSize
	if pool <= 0 {
		pool = DefaultPoolSize
	}
	if rctx != nil && rctx.PoolSize > 0 {
		pool = rctx.PoolSize
	}

	candidates, err := r.Repo.ListProfilesCreatedAfter(ctx, rctx.CursorTime, pool)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]*core.Item, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.ID == "" {
			continue
		}
		if c.ID == rctx.ViewerID {
			continue
		}
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true

		it := core.NewItem(c)
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
