package filter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/matchkit/core"
)

// DefaultDecisionWindow 是“近期已决策”的回看窗口。
const DefaultDecisionWindow = 7 * 24 * time.Hour

// Lookup 是一次排除源查询的结果。Degraded 为 true 表示该源查询失败、
// 按空集处理：排除可能不完整，但排序不中止。聚合方据此能精确记录
// 是哪个源降级了，而不是靠空 catch 吞掉。
type Lookup struct {
	Source   string
	IDs      []string
	Degraded bool
	Err      error
}

// Resolver 为一个 viewer 解析排除集：匹配、拉黑（双向）、近期决策，
// 三路查询并发执行后 join，外加 viewer 自己。只读，无副作用。
//
// 注意：拉黑的两个方向在 BlockStore.BlocksInvolving 的一次调用里同时返回，
// 所以这里是三路 fan-out 而不是四路，语义不变。
type Resolver struct {
	Blocks    core.BlockStore
	Matches   core.MatchStore
	Decisions core.DecisionStore

	// DecisionWindow 是决策回看窗口，<=0 时取 DefaultDecisionWindow
	DecisionWindow time.Duration

	// Timeout 是每路查询的超时，0 表示跟随请求 context
	Timeout time.Duration

	// Now 可注入时钟，便于测试；默认 time.Now
	Now func() time.Time
}

// Resolve 返回排除集与各路查询的明细（含降级信息）。
// 任何一路失败都不会让 Resolve 返回错误。
func (r *Resolver) Resolve(ctx context.Context, viewerID string) (core.ExclusionSet, []Lookup) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	window := r.DecisionWindow
	if window <= 0 {
		window = DefaultDecisionWindow
	}
	since := now().Add(-window)

	var (
		mu      sync.Mutex
		lookups []Lookup
		eg, _   = errgroup.WithContext(ctx)
	)

	run := func(source string, fn func(ctx context.Context) ([]string, error)) {
		eg.Go(func() error {
			lctx := ctx
			if r.Timeout > 0 {
				var cancel context.CancelFunc
				lctx, cancel = context.WithTimeout(ctx, r.Timeout)
				defer cancel()
			}

			ids, err := fn(lctx)
			lk := Lookup{Source: source, IDs: ids}
			if err != nil {
				// 查询失败按空集降级，绝不让排除查询打断排序
				lk = Lookup{Source: source, Degraded: true, Err: err}
			}

			mu.Lock()
			lookups = append(lookups, lk)
			mu.Unlock()
			return nil
		})
	}

	if r.Matches != nil {
		run("matches", func(lctx context.Context) ([]string, error) {
			matches, err := r.Matches.MatchesInvolving(lctx, viewerID)
			if err != nil {
				return nil, err
			}
			ids := make([]string, 0, len(matches))
			for _, m := range matches {
				if m.UserA == viewerID {
					ids = append(ids, m.UserB)
				} else {
					ids = append(ids, m.UserA)
				}
			}
			return ids, nil
		})
	}

	if r.Blocks != nil {
		run("blocks", func(lctx context.Context) ([]string, error) {
			blocks, err := r.Blocks.BlocksInvolving(lctx, viewerID)
			if err != nil {
				return nil, err
			}
			ids := make([]string, 0, len(blocks))
			for _, b := range blocks {
				if b.BlockerID == viewerID {
					ids = append(ids, b.BlockedID)
				} else {
					ids = append(ids, b.BlockerID)
				}
			}
			return ids, nil
		})
	}

	if r.Decisions != nil {
		run("decisions", func(lctx context.Context) ([]string, error) {
			decisions, err := r.Decisions.RecentDecisions(lctx, viewerID, since)
			if err != nil {
				return nil, err
			}
			ids := make([]string, 0, len(decisions))
			for _, d := range decisions {
				ids = append(ids, d.TargetID)
			}
			return ids, nil
		})
	}

	// run 内部从不返回 error
	_ = eg.Wait()

	set := make(core.ExclusionSet, 64)
	set.Add(viewerID)
	for _, lk := range lookups {
		for _, id := range lk.IDs {
			set.Add(id)
		}
	}
	return set, lookups
}
