package core

import (
	"time"

	"github.com/rushteam/matchkit/pkg/utils"
)

// RecommendContext 承载 viewer 与请求信息，贯穿整个 Pipeline 透传。
// 每个请求构建一个，全程只读（Labels 除外），请求间不共享。
type RecommendContext struct {
	ViewerID string

	// Viewer 是发起请求的用户自己的资料，驱动偏好/同城/兴趣信号
	Viewer *Candidate

	// Cursor 是原始游标串（空字符串表示首页），参与乱序种子推导
	Cursor string

	// CursorTime 是游标解码出的创建时间；召回从严格晚于该时间处开始
	CursorTime time.Time

	// PoolSize 是本次允许超量拉取的候选池上限
	PoolSize int

	// Labels 是请求级标签：乱序种子、降级的排除源等都写在这里，
	// 用于 explain / 观测，不进入对外响应体
	Labels map[string]utils.Label

	// Params 请求级上下文参数（设备、AB 桶等），各 Node 按需读取
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
