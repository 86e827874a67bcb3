// Package matchkit 是交友/婚恋场景的候选人排序与多样性引擎（Match Kit）。
//
// 设计要点：
// - Pipeline-first: 一次排序 pass 通过 Node 串联（Recall → Filter → Rank → ReRank）
// - 可复现: 带内乱序由 hash(viewer, cursor, 池大小) 种子驱动，相同输入相同次序
// - 可解释: 分项得分写进 Components，过滤原因/降级来源以 Label 全链路透传
// - 降级优先: 排除查询与结果缓存的故障一律按空数据吸收，排序本身从不因此中止
package matchkit

import "github.com/rushteam/matchkit/pipeline"

// 轻量 facade：便于用户直接 import "matchkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
