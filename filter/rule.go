package filter

import (
	"context"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/pkg/dsl"
)

// Rule 是规则过滤器：候选人必须满足全部 CEL 表达式才保留。
// 规则来自部署配置（例如地区合规、最低资料完整度），不属于排序信号。
type Rule struct {
	// Exprs 是 CEL 表达式列表，全部为 true 才放行
	Exprs []string
}

func NewRule(exprs ...string) *Rule {
	return &Rule{Exprs: exprs}
}

func (f *Rule) Name() string {
	return "filter.rule"
}

func (f *Rule) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if len(f.Exprs) == 0 {
		return false, nil
	}

	eval := dsl.NewEval(item, rctx)
	for _, expr := range f.Exprs {
		ok, err := eval.Evaluate(expr)
		if err != nil {
			// 规则本身有问题时放行该候选人，交给 Node 层记录
			return false, err
		}
		if !ok {
			return true, nil
		}
	}
	return false, nil
}
