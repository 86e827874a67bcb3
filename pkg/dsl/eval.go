package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/matchkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("candidate", cel.DynType),
		cel.Variable("viewer", cel.DynType),
		cel.Variable("label", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是合规规则的解释器，使用 CEL (Common Expression Language) 实现。
// 部署方用它表达资料维度的准入规则，不用改引擎代码。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：candidate.city == "shanghai" / candidate.plan != "free"
//   - 数值：candidate.score >= 10
//   - 逻辑：candidate.gender == viewer.looking_for && candidate.city == viewer.city
//   - 包含："music" in candidate.interests
//
// 表达式返回 true 表示候选人通过该规则。
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
	env  *cel.Env
}

// NewEval 创建一个新的规则解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item: item,
		rctx: rctx,
		env:  env,
	}
}

// Evaluate 解析并执行规则表达式，返回布尔结果。
// 空表达式恒为 true（不设规则即全部放行）。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	input := map[string]interface{}{
		"candidate": candidateToMap(e.item),
		"viewer":    map[string]interface{}{},
		"label":     labelsToMap(e.item),
	}
	if e.rctx != nil && e.rctx.Viewer != nil {
		input["viewer"] = viewerToMap(e.rctx.Viewer)
	}
	return input
}

func candidateToMap(item *core.Item) map[string]interface{} {
	if item == nil || item.Candidate == nil {
		return map[string]interface{}{}
	}
	c := item.Candidate
	return map[string]interface{}{
		"id":          c.ID,
		"city":        c.NormalizedCity(),
		"gender":      c.Gender,
		"looking_for": c.LookingFor,
		"plan":        c.Plan,
		"interests":   toAnySlice(c.Interests),
		"score":       item.Score,
	}
}

func viewerToMap(v *core.Candidate) map[string]interface{} {
	return map[string]interface{}{
		"id":          v.ID,
		"city":        v.NormalizedCity(),
		"gender":      v.Gender,
		"looking_for": v.LookingFor,
		"plan":        v.Plan,
		"interests":   toAnySlice(v.Interests),
	}
}

func labelsToMap(item *core.Item) map[string]interface{} {
	labels := make(map[string]interface{})
	if item == nil {
		return labels
	}
	for k, v := range item.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
	}
	return labels
}

func toAnySlice(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
